package voicechat

import (
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// FrameHandler receives one capture frame of mono float32 samples at
// the capture sample rate.
type FrameHandler func([]float32)

// Capture acquires the microphone and emits fixed-size frames while
// active. One Capture instance holds the input device exclusively; the
// client never runs more than one per session.
type Capture struct {
	config    *ChatConfig
	stream    *portaudio.Stream
	recording bool
	amplitude float32
	logger    *ChatLogger
	mu        sync.Mutex
}

func NewCapture(config *ChatConfig) *Capture {
	if config == nil {
		config = NewChatConfig()
	}
	return &Capture{
		config: config,
		logger: GetGlobalLogger().WithComponent("capture"),
	}
}

// StartRecording opens the input device and invokes handler once per
// captured frame until StopRecording. Failure to acquire the device
// maps to PERMISSION_DENIED or DEVICE_UNAVAILABLE.
func (c *Capture) StartRecording(handler FrameHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.recording {
		return NewDeviceError("already recording")
	}

	if err := portaudio.Initialize(); err != nil {
		return classifyDeviceError(err)
	}

	callback := func(in []float32) {
		c.mu.Lock()
		if !c.recording {
			// Frames arriving during teardown are dropped.
			c.mu.Unlock()
			return
		}
		c.amplitude = RMS(in)
		c.mu.Unlock()

		if handler != nil {
			handler(in)
		}
	}

	stream, err := c.openStream(callback)
	if err != nil {
		portaudio.Terminate()
		return classifyDeviceError(err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return classifyDeviceError(err)
	}

	c.stream = stream
	c.recording = true
	c.logger.LogAudioEvent("recording_started", map[string]interface{}{
		"sample_rate": c.config.CaptureRate,
		"buffer_size": c.config.BufferSize,
	})
	return nil
}

func (c *Capture) openStream(callback func([]float32)) (*portaudio.Stream, error) {
	if c.config.AudioDeviceID == nil {
		return portaudio.OpenDefaultStream(1, 0, float64(c.config.CaptureRate), c.config.BufferSize, callback)
	}

	device, err := deviceByID(*c.config.AudioDeviceID)
	if err != nil {
		return nil, err
	}
	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(c.config.CaptureRate)
	params.FramesPerBuffer = c.config.BufferSize
	return portaudio.OpenStream(params, callback)
}

// StopRecording releases the device. No frames are delivered through
// the handler after it returns. Idempotent.
func (c *Capture) StopRecording() {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return
	}
	c.recording = false
	stream := c.stream
	c.stream = nil
	c.mu.Unlock()

	if stream != nil {
		if err := stream.Stop(); err != nil {
			c.logger.WithError(err).Warn("Failed to stop capture stream")
		}
		stream.Close()
	}
	portaudio.Terminate()
	c.logger.LogAudioEvent("recording_stopped", nil)
}

// IsRecording reports whether the device is currently held.
func (c *Capture) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// CurrentAmplitude returns the RMS of the most recent frame.
func (c *Capture) CurrentAmplitude() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.amplitude
}

// classifyDeviceError maps portaudio failures onto the capture error
// taxonomy.
func classifyDeviceError(err error) *ChatError {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "denied") || strings.Contains(msg, "access") {
		return WrapError(err, ErrCodePermissionDenied)
	}
	return WrapError(err, ErrCodeDeviceUnavailable)
}
