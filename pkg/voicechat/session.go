package voicechat

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Session owns one duplex connection to a voice agent: handshake, the
// shared outbound sequence counter, keep-alive pings, and inbound
// dispatch. Sessions are single-use; after Close a new Session must be
// created for the next call.
type Session struct {
	config   *ChatConfig
	conn     *websocket.Conn
	state    SessionState
	sequence uint64
	agentID  string

	onAudio AudioPayloadHandler
	onText  TextHandler
	onClear func()
	onClose CloseHandler

	keepAliveStop chan struct{}
	userClosed    bool
	closeNotified bool
	logger        *ChatLogger
	mu            sync.Mutex
}

// AudioPayloadHandler receives decoded inbound audio payloads as raw
// PCM16LE bytes.
type AudioPayloadHandler func([]byte)

func NewSession(config *ChatConfig) *Session {
	if config == nil {
		config = NewChatConfig()
	}
	return &Session{
		config: config,
		state:  SessionIdle,
		logger: GetGlobalLogger().WithComponent("session"),
	}
}

// OnAudio, OnText, OnClear and OnClose register dispatch targets. Set
// them before Connect; the session never mutates them afterwards.
func (s *Session) OnAudio(handler AudioPayloadHandler) { s.onAudio = handler }
func (s *Session) OnText(handler TextHandler)          { s.onText = handler }
func (s *Session) OnClear(handler func())              { s.onClear = handler }
func (s *Session) OnClose(handler CloseHandler)        { s.onClose = handler }

// Connect dials <endpoint>/<agentID>, sends the session-context init
// message and starts the read and keep-alive loops. Handshake failures
// are terminal: the session lands in SessionClosed and is not retried.
func (s *Session) Connect(target AgentTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionIdle {
		return NewConnectionError(fmt.Sprintf("session is %s, not idle", s.state)).AddDetail("state", string(s.state))
	}
	if target.AgentID == "" {
		return NewConnectionError("agent id is required")
	}

	s.state = SessionConnecting
	s.agentID = target.AgentID

	header := make(http.Header)
	for k, v := range s.config.Headers {
		header.Set(k, v)
	}
	if s.config.UseTokenAuth {
		token, err := GenerateSessionToken(target.AgentID)
		if err != nil {
			s.state = SessionClosed
			return err
		}
		header.Set("Authorization", "Bearer "+token)
	}

	url := s.config.WsEndpoint + "/" + target.AgentID
	if s.config.DebugWebsocket {
		s.logger.Debugf("Dialing %s", url)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		s.state = SessionClosed
		return WrapError(err, ErrCodeConnectionFailed).AddDetail("endpoint", url)
	}
	s.conn = conn

	init := newInitMessage(s.config.UserName, time.Now())
	if err := conn.WriteJSON(init); err != nil {
		conn.Close()
		s.conn = nil
		s.state = SessionClosed
		return WrapError(err, ErrCodeConnectionFailed).AddDetail("stage", "init")
	}

	s.state = SessionOpen
	s.keepAliveStop = make(chan struct{})
	s.logger.LogSessionEvent("connected", s.state, map[string]interface{}{"agent_id": target.AgentID})

	go s.keepAliveLoop(s.keepAliveStop)
	go s.readLoop(conn)
	return nil
}

// SendAudio transmits one encoded chunk, assigning the next sequence
// number. Frames arriving while the session is not open are dropped
// with an error so the capture path can count them, not queue them.
func (s *Session) SendAudio(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionOpen {
		return NewTransportError("session not open").AddDetail("state", string(s.state))
	}

	msg := newAudioMessage(pcm, s.sequence)
	if err := s.conn.WriteJSON(msg); err != nil {
		s.failWriteLocked(err)
		return WrapError(err, ErrCodeTransport)
	}
	s.sequence++
	if s.config.DebugWebsocket {
		s.logger.Debugf("Sent audio chunk seq:%d len:%d", msg.Sequence, len(pcm))
	}
	return nil
}

// SendUtteranceEnd transmits an end-of-utterance marker on the same
// sequence counter as audio chunks.
func (s *Session) SendUtteranceEnd() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionOpen {
		return NewTransportError("session not open").AddDetail("state", string(s.state))
	}

	msg := audioEOFMessage{Type: msgTypeAudioEOF, Sequence: s.sequence}
	if err := s.conn.WriteJSON(msg); err != nil {
		s.failWriteLocked(err)
		return WrapError(err, ErrCodeTransport)
	}
	s.sequence++
	s.logger.LogAudioEvent("utterance_end", map[string]interface{}{"sequence": msg.Sequence})
	return nil
}

// Close flushes a final end-of-utterance marker best-effort, then closes
// the connection. Safe to call from any state, any number of times; the
// flush happens only on the first call that finds the session open.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userClosed = true
	if s.state == SessionClosed || s.state == SessionIdle {
		s.state = SessionClosed
		return
	}
	if s.state == SessionOpen {
		s.state = SessionClosing
		// Best-effort, not waiting for acknowledgement.
		_ = s.conn.WriteJSON(audioEOFMessage{Type: msgTypeAudioEOF, Sequence: s.sequence})
		s.sequence++
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stop"))
	}
	s.teardownLocked()
}

// failWriteLocked runs when an outbound write fails: any transport
// error is terminal, so the session is torn down immediately instead of
// waiting for the read loop to notice the dead conn. The close handler
// is scheduled off the caller's goroutine, which may be a device
// callback. Caller holds s.mu.
func (s *Session) failWriteLocked(err error) {
	s.teardownLocked()
	if s.closeNotified || s.userClosed {
		return
	}
	s.closeNotified = true
	if s.onClose != nil {
		onClose := s.onClose
		go onClose(CloseInfo{Code: -1, Err: err})
	}
}

// teardownLocked releases the connection and keep-alive exactly once.
// Caller holds s.mu.
func (s *Session) teardownLocked() {
	if s.keepAliveStop != nil {
		close(s.keepAliveStop)
		s.keepAliveStop = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.state = SessionClosed
	s.logger.LogSessionEvent("closed", s.state, map[string]interface{}{"agent_id": s.agentID})
}

func (s *Session) keepAliveLoop(stop chan struct{}) {
	ticker := time.NewTicker(s.config.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state != SessionOpen {
				s.mu.Unlock()
				return
			}
			if err := s.conn.WriteJSON(pingMessage{Type: msgTypePing}); err != nil {
				s.failWriteLocked(err)
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
			if s.config.DebugWebsocket {
				s.logger.Debug("Sent keep-alive ping")
			}
		}
	}
}

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.handleReadError(err)
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			// Raw frames are audio payloads, not JSON.
			if s.onAudio != nil {
				s.onAudio(data)
			}
		case websocket.TextMessage:
			s.dispatch(data)
		}
	}
}

func (s *Session) dispatch(data []byte) {
	msg, err := parseServerMessage(data)
	if err != nil {
		s.logger.LogError(WrapError(err, ErrCodeJSONParse).AddDetail("length", len(data)))
		return
	}

	switch msg.Type {
	case msgTypeAudio:
		payload, err := base64.StdEncoding.DecodeString(msg.Data)
		if err != nil {
			// A bad chunk is dropped; the session survives.
			s.logger.LogError(WrapError(err, ErrCodeDecode).AddDetail("length", len(msg.Data)))
			return
		}
		if s.onAudio != nil {
			s.onAudio(payload)
		}
	case msgTypeText:
		if s.onText != nil && msg.Data != "" {
			s.onText(msg.Data)
		}
	case msgTypeClear:
		if s.onClear != nil {
			s.onClear()
		}
	default:
		if s.config.DebugWebsocket {
			s.logger.Debugf("Unhandled message type: %s", msg.Type)
		}
	}
}

// handleReadError runs when the read loop ends. A close initiated by
// this side is quiet; anything else is a terminal transport error
// surfaced through the close handler with code and reason if available.
func (s *Session) handleReadError(err error) {
	s.mu.Lock()
	userClosed := s.userClosed
	notified := s.closeNotified
	s.closeNotified = true
	if s.state != SessionClosed {
		s.teardownLocked()
	}
	onClose := s.onClose
	s.mu.Unlock()

	if userClosed || notified {
		return
	}

	info := CloseInfo{Code: -1, Err: err}
	if closeErr, ok := err.(*websocket.CloseError); ok {
		info.Code = closeErr.Code
		info.Reason = closeErr.Text
	}
	s.logger.WithError(err).Warnf("Transport closed with code %d: %s", info.Code, info.Reason)
	if onClose != nil {
		onClose(info)
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Sequence returns the next sequence number to be assigned.
func (s *Session) Sequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence
}

// IsOpen reports whether the session accepts sends.
func (s *Session) IsOpen() bool {
	return s.State() == SessionOpen
}
