package voicechat

import "testing"

func TestTranscriptTracker(t *testing.T) {
	tracker := NewTranscriptTracker()

	if tracker.Count() != 0 || tracker.Last() != "" {
		t.Fatal("fresh tracker is not empty")
	}

	tracker.AddAgentText("hello")
	tracker.AddAgentText("how can I help?")

	if tracker.Count() != 2 {
		t.Errorf("count = %d, want 2", tracker.Count())
	}
	if tracker.Last() != "how can I help?" {
		t.Errorf("last = %q", tracker.Last())
	}

	lines := tracker.Lines()
	lines[0] = "mutated"
	if tracker.Lines()[0] != "hello" {
		t.Error("Lines returned a live reference to internal state")
	}

	tracker.Clear()
	if tracker.Count() != 0 {
		t.Errorf("count after Clear = %d", tracker.Count())
	}
}
