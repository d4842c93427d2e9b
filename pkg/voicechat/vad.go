package voicechat

import (
	"sync"
	"time"
)

// SilenceDetector classifies capture frames as speech or silence by RMS
// energy and signals end-of-utterance after a run of consecutive silent
// frames. Emissions are debounced so sustained silence produces at most
// one marker per debounce window.
//
// RMS is computed on the raw capture samples, before the configured
// gain is applied to the outbound path.
type SilenceDetector struct {
	threshold    float32
	framesToEOF  int
	debounce     time.Duration
	silentFrames int
	lastEOF      time.Time
	now          func() time.Time
	mu           sync.Mutex
}

// NewSilenceDetector builds a detector with the given RMS threshold,
// consecutive-silent-frame trigger count and debounce interval.
func NewSilenceDetector(threshold float32, framesToEOF int, debounce time.Duration) *SilenceDetector {
	return &SilenceDetector{
		threshold:   threshold,
		framesToEOF: framesToEOF,
		debounce:    debounce,
		now:         time.Now,
	}
}

// ProcessFrame feeds one capture frame and reports whether an
// end-of-utterance marker should be sent now. A voiced frame resets the
// silence run. When the run reaches the trigger count the counter is
// reset either way; the marker is only emitted if the debounce window
// has elapsed since the previous one.
func (d *SilenceDetector) ProcessFrame(samples []float32) bool {
	return d.ProcessRMS(RMS(samples))
}

// ProcessRMS is ProcessFrame for callers that already computed the
// frame energy.
func (d *SilenceDetector) ProcessRMS(rms float32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if rms >= d.threshold {
		d.silentFrames = 0
		return false
	}

	d.silentFrames++
	if d.silentFrames < d.framesToEOF {
		return false
	}
	d.silentFrames = 0

	now := d.now()
	if !d.lastEOF.IsZero() && now.Sub(d.lastEOF) <= d.debounce {
		return false
	}
	d.lastEOF = now
	return true
}

// Reset clears the silence run and the debounce timestamp.
func (d *SilenceDetector) Reset() {
	d.mu.Lock()
	d.silentFrames = 0
	d.lastEOF = time.Time{}
	d.mu.Unlock()
}

// SilentFrameCount returns the current consecutive-silent-frame run.
func (d *SilenceDetector) SilentFrameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.silentFrames
}
