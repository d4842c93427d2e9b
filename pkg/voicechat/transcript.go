package voicechat

import "sync"

// TranscriptTracker collects agent utterance text received during a
// session. Text messages are pass-through for the caller; the tracker
// just keeps an ordered copy for display or logging.
type TranscriptTracker struct {
	lines []string
	mu    sync.Mutex
}

func NewTranscriptTracker() *TranscriptTracker {
	return &TranscriptTracker{lines: []string{}}
}

func (t *TranscriptTracker) AddAgentText(text string) {
	t.mu.Lock()
	t.lines = append(t.lines, text)
	t.mu.Unlock()
}

// Lines returns a copy of the collected transcript.
func (t *TranscriptTracker) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := make([]string, len(t.lines))
	copy(lines, t.lines)
	return lines
}

func (t *TranscriptTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lines)
}

func (t *TranscriptTracker) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) == 0 {
		return ""
	}
	return t.lines[len(t.lines)-1]
}

func (t *TranscriptTracker) Clear() {
	t.mu.Lock()
	t.lines = []string{}
	t.mu.Unlock()
}
