package voicechat

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Outbound message types
const (
	msgTypeInit     = "init"
	msgTypeAudio    = "audio"
	msgTypeAudioEOF = "audio_eof"
	msgTypePing     = "ping"
)

// Inbound message types
const (
	msgTypeText  = "text"
	msgTypeClear = "clear"
)

// initMessage is sent once immediately after the socket opens.
type initMessage struct {
	Type     string   `json:"type"`
	MetaData metadata `json:"meta_data"`
}

type metadata struct {
	ContextData contextData `json:"context_data"`
}

type contextData struct {
	UserName  string `json:"user_name"`
	SessionID string `json:"session_id"`
	Timestamp int64  `json:"timestamp"`
}

// audioMessage carries one encoded chunk. The same sequence counter is
// shared with audioEOFMessage, strictly increasing per session.
type audioMessage struct {
	Type     string `json:"type"`
	Data     string `json:"data"`
	Sequence uint64 `json:"sequence"`
}

type audioEOFMessage struct {
	Type     string `json:"type"`
	Sequence uint64 `json:"sequence"`
}

type pingMessage struct {
	Type string `json:"type"`
}

// serverMessage is the inbound JSON envelope. Audio payloads arrive
// base64-encoded in Data.
type serverMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

func newInitMessage(userName string, at time.Time) initMessage {
	return initMessage{
		Type: msgTypeInit,
		MetaData: metadata{
			ContextData: contextData{
				UserName:  userName,
				SessionID: at.UTC().Format(time.RFC3339Nano),
				Timestamp: at.UnixMilli(),
			},
		},
	}
}

func newAudioMessage(pcm []byte, sequence uint64) audioMessage {
	return audioMessage{
		Type:     msgTypeAudio,
		Data:     base64.StdEncoding.EncodeToString(pcm),
		Sequence: sequence,
	}
}

func parseServerMessage(data []byte) (*serverMessage, error) {
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
