package voicechat

import (
	"testing"
	"time"
)

// fakeClock drives the detector's debounce window deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDetector(clock *fakeClock) *SilenceDetector {
	d := NewSilenceDetector(0.001, 8, 500*time.Millisecond)
	d.now = clock.now
	return d
}

func TestSilenceDetectorTriggersAfterRun(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDetector(clock)

	for i := 0; i < 7; i++ {
		if d.ProcessRMS(0.0001) {
			t.Fatalf("triggered early at frame %d", i+1)
		}
	}
	if !d.ProcessRMS(0.0001) {
		t.Fatal("expected trigger on 8th consecutive silent frame")
	}
}

func TestSilenceDetectorSustainedSilenceOneMarker(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDetector(clock)

	// 10 silent frames at 100ms spacing: the run completes at frame 8,
	// frames 9 and 10 only restart the count.
	triggers := 0
	for i := 0; i < 10; i++ {
		if d.ProcessRMS(0.0) {
			triggers++
		}
		clock.advance(100 * time.Millisecond)
	}
	if triggers != 1 {
		t.Errorf("expected exactly 1 marker from sustained silence, got %d", triggers)
	}
}

func TestSilenceDetectorVoicedFrameResetsRun(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDetector(clock)

	for i := 0; i < 7; i++ {
		d.ProcessRMS(0.0)
	}
	d.ProcessRMS(0.5)
	if d.SilentFrameCount() != 0 {
		t.Fatalf("voiced frame left count at %d", d.SilentFrameCount())
	}
	if d.ProcessRMS(0.0) {
		t.Fatal("triggered after a single silent frame following speech")
	}
}

func TestSilenceDetectorDebounce(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDetector(clock)

	for i := 0; i < 8; i++ {
		d.ProcessRMS(0.0)
	}

	// A second full run inside the debounce window is suppressed but
	// still consumed.
	clock.advance(200 * time.Millisecond)
	triggered := false
	for i := 0; i < 8; i++ {
		if d.ProcessRMS(0.0) {
			triggered = true
		}
	}
	if triggered {
		t.Fatal("marker emitted inside debounce window")
	}
	if d.SilentFrameCount() != 0 {
		t.Errorf("suppressed run left count at %d, want 0", d.SilentFrameCount())
	}

	// After the window a fresh run fires again.
	clock.advance(600 * time.Millisecond)
	triggered = false
	for i := 0; i < 8; i++ {
		if d.ProcessRMS(0.0) {
			triggered = true
		}
	}
	if !triggered {
		t.Fatal("marker not emitted after debounce window elapsed")
	}
}

func TestSilenceDetectorThresholdBoundary(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDetector(clock)

	// RMS exactly at the threshold counts as speech.
	d.ProcessRMS(0.0005)
	d.ProcessRMS(0.001)
	if d.SilentFrameCount() != 0 {
		t.Errorf("frame at threshold treated as silence, count %d", d.SilentFrameCount())
	}
}

func TestSilenceDetectorReset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDetector(clock)

	for i := 0; i < 8; i++ {
		d.ProcessRMS(0.0)
	}
	d.Reset()

	// Reset clears the debounce timestamp, so the next run fires without
	// advancing the clock.
	triggered := false
	for i := 0; i < 8; i++ {
		if d.ProcessRMS(0.0) {
			triggered = true
		}
	}
	if !triggered {
		t.Fatal("Reset did not clear the debounce timestamp")
	}
}

func TestSilenceDetectorProcessFrame(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDetector(clock)

	silent := make([]float32, 512)
	for i := 0; i < 7; i++ {
		if d.ProcessFrame(silent) {
			t.Fatalf("triggered early at frame %d", i+1)
		}
	}
	if !d.ProcessFrame(silent) {
		t.Fatal("expected trigger on 8th silent frame")
	}
}
