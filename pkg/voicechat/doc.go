// Package voicechat is a real-time bidirectional audio-streaming client
// for conversational voice agents.
//
// The client captures microphone audio, downsamples and encodes it to
// 16-bit linear PCM, streams it over a persistent WebSocket to an agent
// endpoint, and concurrently decodes and plays back the synthesized
// speech the agent streams back. Utterance boundaries are detected from
// signal energy and signaled to the agent with debounced
// end-of-utterance markers.
//
// # Quick Start
//
//	config := voicechat.NewChatConfig()
//	client := voicechat.NewVoiceChatClient(config)
//
//	client.AddTextHandler(voicechat.CreateLoggingTextHandler())
//	client.AddErrorHandler(voicechat.CreateErrorLoggingHandler("Main"))
//
//	if err := client.Start(voicechat.AgentTarget{AgentID: "abc123"}); err != nil {
//		log.Fatal(err)
//	}
//	defer client.Stop()
//
// # Wire Protocol
//
// The session speaks JSON envelopes over an ordered duplex connection
// to ws://<host>/chat/v1/<agentId>: an "init" message with session
// context on connect, "audio" messages carrying base64 PCM16LE chunks
// with strictly increasing sequence numbers, debounced "audio_eof"
// utterance markers on the same counter, and a "ping" keep-alive every
// ten seconds. Inbound messages are "audio" (base64 PCM16LE at the
// transport rate), "text" transcripts, and "clear" for barge-in; raw
// binary frames are accepted as audio payloads too.
//
// # Failure Model
//
// Handshake failures and mid-session transport errors are terminal for
// that session and are never retried automatically; the caller decides
// whether to start a fresh session. Decode failures on individual
// inbound chunks are logged and skipped.
//
// # Dependencies
//
//   - github.com/gordonklaus/portaudio: audio capture and playback
//   - github.com/gorilla/websocket: WebSocket transport
//   - github.com/rs/zerolog: structured logging
//   - github.com/golang-jwt/jwt/v4: optional dial auth tokens
//   - github.com/joho/godotenv: environment configuration
package voicechat
