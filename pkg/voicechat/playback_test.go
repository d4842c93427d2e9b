package voicechat

import "testing"

// newTestPlayer returns a Player without touching the audio device; the
// fill callback is driven directly.
func newTestPlayer() *Player {
	config := NewChatConfig()
	config.BufferSize = 8
	return NewPlayer(config)
}

func ramp(start float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = start + float32(i)
	}
	return out
}

func TestPlayerFillCrossesBufferBoundaries(t *testing.T) {
	p := newTestPlayer()
	p.Enqueue(ramp(0, 5))
	p.Enqueue(ramp(100, 5))

	out := make([]float32, 8)
	p.fill(out)

	want := []float32{0, 1, 2, 3, 4, 100, 101, 102}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("tick 1 sample %d: got %v, want %v", i, out[i], want[i])
		}
	}

	p.fill(out)
	wantTail := []float32{103, 104, 0, 0, 0, 0, 0, 0}
	for i := range wantTail {
		if out[i] != wantTail[i] {
			t.Errorf("tick 2 sample %d: got %v, want %v", i, out[i], wantTail[i])
		}
	}

	if p.BuffersPlayed() != 2 {
		t.Errorf("buffers played = %d, want 2", p.BuffersPlayed())
	}
}

func TestPlayerFillSilenceWhenEmpty(t *testing.T) {
	p := newTestPlayer()

	out := []float32{9, 9, 9, 9}
	p.fill(out)

	for i, v := range out {
		if v != 0 {
			t.Errorf("sample %d: got %v, want silence", i, v)
		}
	}
	if p.Underruns() != 0 {
		t.Errorf("idle fill counted as underrun")
	}
}

func TestPlayerUnderrunCountedWhilePlaying(t *testing.T) {
	p := newTestPlayer()
	p.Enqueue(ramp(0, 4))

	out := make([]float32, 8)
	p.fill(out)

	if p.Underruns() != 1 {
		t.Errorf("underruns = %d, want 1", p.Underruns())
	}
	if p.State() != PlaybackIdle {
		t.Errorf("state after drain = %s, want idle", p.State())
	}
}

func TestPlayerFIFOOrder(t *testing.T) {
	p := newTestPlayer()
	for b := 0; b < 4; b++ {
		p.Enqueue(ramp(float32(b*1000), 8))
	}

	out := make([]float32, 8)
	for b := 0; b < 4; b++ {
		p.fill(out)
		if out[0] != float32(b*1000) {
			t.Fatalf("buffer %d played out of order: first sample %v", b, out[0])
		}
	}
}

func TestPlayerClearDiscardsQueueAndInFlight(t *testing.T) {
	p := newTestPlayer()
	p.Enqueue(ramp(0, 16))
	p.Enqueue(ramp(100, 8))

	out := make([]float32, 8)
	p.fill(out) // half way through the first buffer

	p.Clear()

	if p.QueueLength() != 0 {
		t.Errorf("queue length after Clear = %d", p.QueueLength())
	}
	if p.State() != PlaybackIdle {
		t.Errorf("state after Clear = %s, want idle", p.State())
	}

	// The next tick must not resume the cleared buffer.
	p.fill(out)
	for i, v := range out {
		if v != 0 {
			t.Errorf("sample %d after Clear: got %v, want silence", i, v)
		}
	}
}

func TestPlayerEnqueueEmptyIgnored(t *testing.T) {
	p := newTestPlayer()
	p.Enqueue(nil)
	p.Enqueue([]float32{})

	if p.QueueLength() != 0 {
		t.Errorf("empty buffers were queued: %d", p.QueueLength())
	}
	if p.State() != PlaybackIdle {
		t.Errorf("state = %s, want idle", p.State())
	}
}

func TestPlayerStateTransitions(t *testing.T) {
	p := newTestPlayer()
	if p.State() != PlaybackIdle {
		t.Fatalf("initial state = %s", p.State())
	}

	p.Enqueue(ramp(0, 4))
	if p.State() != PlaybackPlaying {
		t.Fatalf("state after Enqueue = %s, want playing", p.State())
	}

	out := make([]float32, 8)
	p.fill(out)
	if p.State() != PlaybackIdle {
		t.Fatalf("state after drain = %s, want idle", p.State())
	}
}
