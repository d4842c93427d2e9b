package voicechat

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Player schedules decoded sample buffers for gapless playback. Buffers
// drain strictly in arrival order through a single persistent output
// stream; the device callback crosses buffer boundaries within one tick
// so consecutive chunks play back-to-back. The queue is owned
// exclusively by the Player and mutated only via Enqueue, Clear and the
// device callback.
type Player struct {
	config    *ChatConfig
	queue     [][]float32
	cursor    int
	state     PlaybackState
	stream    *portaudio.Stream
	started   bool
	underruns int64
	played    int64
	logger    *ChatLogger
	mu        sync.Mutex
}

func NewPlayer(config *ChatConfig) *Player {
	if config == nil {
		config = NewChatConfig()
	}
	return &Player{
		config: config,
		state:  PlaybackIdle,
		logger: GetGlobalLogger().WithComponent("playback"),
	}
}

// Start opens the output device at the transport sample rate. Playback
// begins as soon as the first buffer is enqueued; until then (and on
// underrun) the device receives silence.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return WrapError(err, ErrCodePlayback)
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(p.config.TransportRate), p.config.BufferSize, p.fill)
	if err != nil {
		portaudio.Terminate()
		return WrapError(err, ErrCodePlayback).AddDetail("sample_rate", p.config.TransportRate)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return WrapError(err, ErrCodePlayback)
	}

	p.stream = stream
	p.started = true
	return nil
}

// Enqueue appends one decoded buffer to the playback queue. Empty
// buffers are ignored.
func (p *Player) Enqueue(samples []float32) {
	if len(samples) == 0 {
		return
	}
	p.mu.Lock()
	p.queue = append(p.queue, samples)
	p.state = PlaybackPlaying
	p.mu.Unlock()
}

// Clear halts in-flight playback and discards every queued buffer.
// Used for server barge-in and on stop.
func (p *Player) Clear() {
	p.mu.Lock()
	p.queue = nil
	p.cursor = 0
	p.state = PlaybackIdle
	p.mu.Unlock()
}

// Stop clears the queue and releases the output device. Idempotent.
func (p *Player) Stop() {
	p.mu.Lock()
	stream := p.stream
	p.stream = nil
	started := p.started
	p.started = false
	p.queue = nil
	p.cursor = 0
	p.state = PlaybackIdle
	p.mu.Unlock()

	if stream != nil {
		if err := stream.Stop(); err != nil {
			p.logger.WithError(err).Warn("Failed to stop playback stream")
		}
		stream.Close()
	}
	if started {
		portaudio.Terminate()
	}
}

// fill is the output device callback: copy queued samples into out,
// crossing buffer boundaries without a gap, and pad with silence when
// the queue runs dry.
func (p *Player) fill(out []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := 0
	for i < len(out) && len(p.queue) > 0 {
		head := p.queue[0]
		n := copy(out[i:], head[p.cursor:])
		i += n
		p.cursor += n
		if p.cursor >= len(head) {
			p.queue = p.queue[1:]
			p.cursor = 0
			p.played++
		}
	}
	if i < len(out) && p.state == PlaybackPlaying {
		p.underruns++
	}
	for ; i < len(out); i++ {
		out[i] = 0
	}

	if len(p.queue) == 0 && p.cursor == 0 {
		if p.state == PlaybackPlaying {
			p.state = PlaybackIdle
		}
	}
}

// QueueLength returns the number of buffers awaiting playback.
func (p *Player) QueueLength() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// State returns the current playback state.
func (p *Player) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// BuffersPlayed returns how many buffers have fully drained.
func (p *Player) BuffersPlayed() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

// Underruns returns how many device ticks ran out of queued audio while
// playback was in progress.
func (p *Player) Underruns() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.underruns
}
