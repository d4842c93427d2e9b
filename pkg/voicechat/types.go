package voicechat

import "time"

// SessionState enum for the transport lifecycle
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionConnecting SessionState = "connecting"
	SessionOpen       SessionState = "open"
	SessionClosing    SessionState = "closing"
	SessionClosed     SessionState = "closed"
)

// ClientStatus enum exposed to callers of the VoiceChatClient
type ClientStatus string

const (
	StatusIdle       ClientStatus = "idle"
	StatusConnecting ClientStatus = "connecting"
	StatusActive     ClientStatus = "active"
	StatusError      ClientStatus = "error"
)

// PlaybackState enum
type PlaybackState string

const (
	PlaybackIdle    PlaybackState = "idle"
	PlaybackPlaying PlaybackState = "playing"
)

// AgentTarget identifies the remote agent for one session. InlineConfig,
// when present, is immutable for the session's lifetime.
type AgentTarget struct {
	AgentID      string
	InlineConfig *FullAgentConfig
}

// ChatError struct
type ChatError struct {
	Message   string
	Code      string
	Timestamp float64
	err       error
	Details   map[string]interface{}
}

func (e *ChatError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.Message
}

func NewChatError(message, code string) *ChatError {
	return &ChatError{
		Message:   message,
		Code:      code,
		Timestamp: float64(time.Now().UnixMilli()),
	}
}

// CloseInfo carries the transport close code and reason when available.
type CloseInfo struct {
	Code   int
	Reason string
	Err    error
}

// PhoneNumber as returned by the numbering service
type PhoneNumber struct {
	SID          string `json:"sid"`
	Number       string `json:"number"`
	FriendlyName string `json:"friendly_name,omitempty"`
	AgentID      string `json:"agent_id,omitempty"`
}

// Handler types
type TextHandler func(string)
type AudioHandler func(pcm []byte)
type StatusHandler func(ClientStatus)
type ErrorHandler func(*ChatError)
type AudioLevelHandler func(rms float32)
type CloseHandler func(CloseInfo)
