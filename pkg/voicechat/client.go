package voicechat

import (
	"sync"
	"sync/atomic"
)

// captureSource and playbackSink are what the client needs from the
// audio endpoints. The portaudio-backed Capture and Player satisfy
// them; tests substitute in-memory fakes.
type captureSource interface {
	StartRecording(FrameHandler) error
	StopRecording()
	IsRecording() bool
}

type playbackSink interface {
	Start() error
	Enqueue([]float32)
	Clear()
	Stop()
	QueueLength() int
}

// VoiceChatClient orchestrates one voice conversation at a time:
// capture → gain → detector → downsample → encode → transport on the
// way out, transport → decode → playback on the way in. Exactly one
// session is active per client; Start while active is rejected.
type VoiceChatClient struct {
	config   *ChatConfig
	capture  captureSource
	player   playbackSink
	session  *Session
	detector *SilenceDetector

	status        ClientStatus
	droppedFrames uint64

	textHandlers   map[int]TextHandler
	audioHandlers  map[int]AudioHandler
	statusHandlers map[int]StatusHandler
	errorHandlers  map[int]ErrorHandler
	nextHandlerID  int

	activeConfig *FullAgentConfig
	transcript   *TranscriptTracker
	logger       *ChatLogger
	mu           sync.Mutex
}

// NewVoiceChatClient builds a client backed by the host's default
// audio devices.
func NewVoiceChatClient(config *ChatConfig) *VoiceChatClient {
	if config == nil {
		config = NewChatConfig()
	}
	return newVoiceChatClient(config, NewCapture(config), NewPlayer(config))
}

func newVoiceChatClient(config *ChatConfig, capture captureSource, player playbackSink) *VoiceChatClient {
	return &VoiceChatClient{
		config:         config,
		capture:        capture,
		player:         player,
		detector:       NewSilenceDetector(config.SilenceThreshold, config.SilenceFrames, config.EOFDebounce),
		status:         StatusIdle,
		textHandlers:   make(map[int]TextHandler),
		audioHandlers:  make(map[int]AudioHandler),
		statusHandlers: make(map[int]StatusHandler),
		errorHandlers:  make(map[int]ErrorHandler),
		transcript:     NewTranscriptTracker(),
		logger:         GetGlobalLogger().WithComponent("client"),
	}
}

// Start opens a session against the target agent and begins streaming.
// Teardown order on failure mirrors Stop: whatever was acquired is
// released before the error is returned.
func (c *VoiceChatClient) Start(target AgentTarget) error {
	c.mu.Lock()
	if c.status == StatusConnecting || c.status == StatusActive {
		c.mu.Unlock()
		return NewChatError("a session is already active", ErrCodeAlreadyActive)
	}
	c.setStatusLocked(StatusConnecting)
	c.detector.Reset()

	// A telephony-profile inline config is adapted for the browser path
	// before the session starts; it stays fixed until the next Start.
	c.activeConfig = nil
	if target.InlineConfig != nil {
		cfg := *target.InlineConfig
		if cfg.AgentConfig.AgentType != "voice_web" {
			cfg = TelephonyToWebConfig(cfg, nil)
		}
		c.activeConfig = &cfg
	}

	session := NewSession(c.config)
	c.session = session
	player := c.player
	c.mu.Unlock()

	session.OnAudio(func(payload []byte) {
		player.Enqueue(DecodePCM16(payload))
		c.dispatchAudio(payload)
	})
	session.OnText(func(text string) {
		c.transcript.AddAgentText(text)
		c.dispatchText(text)
	})
	session.OnClear(func() {
		player.Clear()
	})
	session.OnClose(func(info CloseInfo) {
		c.handleTransportClose(info)
	})

	if err := player.Start(); err != nil {
		c.failStart(WrapError(err, ErrCodePlayback))
		return err
	}

	if err := session.Connect(target); err != nil {
		player.Stop()
		cErr, ok := err.(*ChatError)
		if !ok {
			cErr = WrapError(err, ErrCodeConnectionFailed)
		}
		c.failStart(cErr)
		return err
	}

	if err := c.capture.StartRecording(c.makeFrameHandler(session)); err != nil {
		session.Close()
		player.Stop()
		cErr, ok := err.(*ChatError)
		if !ok {
			cErr = WrapError(err, ErrCodeDeviceUnavailable)
		}
		c.failStart(cErr)
		return err
	}

	c.mu.Lock()
	if c.session != session {
		// Stop ran while the device was being acquired; its teardown
		// already won, so unwind what this start holds and bow out.
		c.mu.Unlock()
		c.capture.StopRecording()
		session.Close()
		player.Clear()
		player.Stop()
		return nil
	}
	c.setStatusLocked(StatusActive)
	c.mu.Unlock()
	c.logger.Infof("Voice chat started for agent %s", target.AgentID)
	return nil
}

// makeFrameHandler builds the outbound pipeline for one session. RMS is
// measured before gain so the silence threshold tracks the raw
// microphone level. Frames that cannot be sent are dropped, never
// queued: the capture tick is the clock and backlog would only add
// latency.
func (c *VoiceChatClient) makeFrameHandler(session *Session) FrameHandler {
	gain := c.config.Gain
	captureRate := c.config.CaptureRate
	transportRate := c.config.TransportRate

	return func(in []float32) {
		rms := RMS(in)

		gained := ApplyGain(in, gain)
		downsampled := Downsample(gained, captureRate, transportRate)
		pcm := EncodePCM16(downsampled)

		if err := session.SendAudio(pcm); err != nil {
			atomic.AddUint64(&c.droppedFrames, 1)
			return
		}

		if c.detector.ProcessRMS(rms) {
			if err := session.SendUtteranceEnd(); err != nil {
				atomic.AddUint64(&c.droppedFrames, 1)
			}
		}
	}
}

// Stop tears the session down in reverse dependency order: capture
// first so no new frames arrive, then the transport (which flushes a
// final end-of-utterance marker), then playback. Safe to call in any
// state, repeatedly, or concurrently with a completing Start.
func (c *VoiceChatClient) Stop() {
	c.mu.Lock()
	session := c.session
	c.session = nil
	alreadyIdle := c.status == StatusIdle
	c.setStatusLocked(StatusIdle)
	c.mu.Unlock()

	c.capture.StopRecording()
	if session != nil {
		session.Close()
	}
	c.player.Clear()
	c.player.Stop()

	if !alreadyIdle {
		c.logger.Info("Voice chat stopped")
	}
}

// failStart records a terminal start error.
func (c *VoiceChatClient) failStart(err *ChatError) {
	c.mu.Lock()
	c.session = nil
	c.setStatusLocked(StatusError)
	c.mu.Unlock()
	c.dispatchError(err)
}

// handleTransportClose runs when the server or the network ends the
// session. Playback is cleared and the error is surfaced; no automatic
// reconnect, restarting is the caller's decision.
func (c *VoiceChatClient) handleTransportClose(info CloseInfo) {
	c.mu.Lock()
	if c.session == nil {
		// Stop already ran.
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.setStatusLocked(StatusError)
	c.mu.Unlock()

	c.capture.StopRecording()
	c.player.Clear()
	c.player.Stop()

	err := NewTransportError("transport closed").
		AddDetail("code", info.Code).
		AddDetail("reason", info.Reason)
	if info.Err != nil {
		err.AddDetail("cause", info.Err.Error())
	}
	c.dispatchError(err)
}

// Status returns the caller-visible connection status.
func (c *VoiceChatClient) Status() ClientStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// DroppedFrames reports how many capture frames were discarded because
// the transport could not take them.
func (c *VoiceChatClient) DroppedFrames() uint64 {
	return atomic.LoadUint64(&c.droppedFrames)
}

// ActiveAgentConfig returns the web-profile agent config for the
// current session, or nil when the session was started by agent id
// alone.
func (c *VoiceChatClient) ActiveAgentConfig() *FullAgentConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeConfig
}

// Transcript returns the tracker collecting agent utterance text.
func (c *VoiceChatClient) Transcript() *TranscriptTracker {
	return c.transcript
}

// AddTextHandler registers a handler for agent text messages and
// returns a removal func.
func (c *VoiceChatClient) AddTextHandler(handler TextHandler) func() {
	c.mu.Lock()
	id := c.nextHandlerID
	c.nextHandlerID++
	c.textHandlers[id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.textHandlers, id)
		c.mu.Unlock()
	}
}

// AddAudioHandler registers a handler for raw inbound agent PCM and
// returns a removal func. Handlers run on the transport read loop, so
// they should hand off rather than block.
func (c *VoiceChatClient) AddAudioHandler(handler AudioHandler) func() {
	c.mu.Lock()
	id := c.nextHandlerID
	c.nextHandlerID++
	c.audioHandlers[id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.audioHandlers, id)
		c.mu.Unlock()
	}
}

// AddStatusHandler registers a handler for status transitions and
// returns a removal func.
func (c *VoiceChatClient) AddStatusHandler(handler StatusHandler) func() {
	c.mu.Lock()
	id := c.nextHandlerID
	c.nextHandlerID++
	c.statusHandlers[id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.statusHandlers, id)
		c.mu.Unlock()
	}
}

// AddErrorHandler registers a handler for session errors and returns a
// removal func.
func (c *VoiceChatClient) AddErrorHandler(handler ErrorHandler) func() {
	c.mu.Lock()
	id := c.nextHandlerID
	c.nextHandlerID++
	c.errorHandlers[id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.errorHandlers, id)
		c.mu.Unlock()
	}
}

// setStatusLocked mutates status and notifies handlers. Caller holds
// c.mu; only Start, Stop and the close callback transition status.
func (c *VoiceChatClient) setStatusLocked(status ClientStatus) {
	if c.status == status {
		return
	}
	c.status = status
	for _, handler := range c.statusHandlers {
		go handler(status)
	}
}

func (c *VoiceChatClient) dispatchText(text string) {
	c.mu.Lock()
	handlers := make([]TextHandler, 0, len(c.textHandlers))
	for _, h := range c.textHandlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(text)
	}
}

func (c *VoiceChatClient) dispatchAudio(pcm []byte) {
	c.mu.Lock()
	handlers := make([]AudioHandler, 0, len(c.audioHandlers))
	for _, h := range c.audioHandlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(pcm)
	}
}

func (c *VoiceChatClient) dispatchError(err *ChatError) {
	c.logger.LogError(err)
	c.mu.Lock()
	handlers := make([]ErrorHandler, 0, len(c.errorHandlers))
	for _, h := range c.errorHandlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(err)
	}
}
