package voicechat

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ChatConfig struct {
	WsEndpoint       string            `json:"ws_endpoint"`
	APIBaseURL       string            `json:"api_base_url"`
	Headers          map[string]string `json:"headers,omitempty"`
	UserName         string            `json:"user_name"`
	UseTokenAuth     bool              `json:"use_token_auth"`
	Gain             float32           `json:"gain"`
	SilenceThreshold float32           `json:"silence_threshold"`
	SilenceFrames    int               `json:"silence_frames"`
	EOFDebounce      time.Duration     `json:"eof_debounce"`
	KeepAlive        time.Duration     `json:"keep_alive"`
	CaptureRate      int               `json:"capture_rate"`
	TransportRate    int               `json:"transport_rate"`
	BufferSize       int               `json:"buffer_size"`
	AudioDeviceID    *int              `json:"audio_device_id,omitempty"`
	DebugLevel       string            `json:"debug_level"`
	DebugWebsocket   bool              `json:"debug_websocket"`
	DebugAudio       bool              `json:"debug_audio"`
}

// NewChatConfig returns the reference configuration, overridden by any
// VOICECHAT_* environment variables. The default gain of 10 compensates
// for low microphone sensitivity; the silence detector sees the raw
// pre-gain signal, so SilenceThreshold is independent of Gain.
func NewChatConfig() *ChatConfig {
	c := &ChatConfig{
		WsEndpoint:       "ws://localhost:5001/chat/v1",
		APIBaseURL:       "http://localhost:5001",
		UserName:         "web-tester",
		UseTokenAuth:     false,
		Gain:             10.0,
		SilenceThreshold: 0.001,
		SilenceFrames:    8,
		EOFDebounce:      500 * time.Millisecond,
		KeepAlive:        10 * time.Second,
		CaptureRate:      48000,
		TransportRate:    16000,
		BufferSize:       2048,
		DebugLevel:       "INFO",
		Headers:          make(map[string]string),
	}

	c.loadFromEnv()

	return c
}

func (c *ChatConfig) loadFromEnv() {
	// Load .env if exists
	_ = godotenv.Load()

	if endpoint := os.Getenv("VOICECHAT_WS_ENDPOINT"); endpoint != "" {
		c.WsEndpoint = endpoint
	}
	if apiURL := os.Getenv("VOICECHAT_API_URL"); apiURL != "" {
		c.APIBaseURL = apiURL
	}
	if name := os.Getenv("VOICECHAT_USER_NAME"); name != "" {
		c.UserName = name
	}

	c.UseTokenAuth = os.Getenv("VOICECHAT_USE_TOKEN_AUTH") == "true"

	if gain := os.Getenv("VOICECHAT_GAIN"); gain != "" {
		if val, err := strconv.ParseFloat(gain, 32); err == nil {
			c.Gain = float32(val)
		}
	}
	if threshold := os.Getenv("VOICECHAT_SILENCE_THRESHOLD"); threshold != "" {
		if val, err := strconv.ParseFloat(threshold, 32); err == nil {
			c.SilenceThreshold = float32(val)
		}
	}
	if frames := os.Getenv("VOICECHAT_SILENCE_FRAMES"); frames != "" {
		if val, err := strconv.Atoi(frames); err == nil {
			c.SilenceFrames = val
		}
	}
	if debounce := os.Getenv("VOICECHAT_EOF_DEBOUNCE_MS"); debounce != "" {
		if val, err := strconv.Atoi(debounce); err == nil {
			c.EOFDebounce = time.Duration(val) * time.Millisecond
		}
	}
	if keepAlive := os.Getenv("VOICECHAT_KEEPALIVE_SECONDS"); keepAlive != "" {
		if val, err := strconv.Atoi(keepAlive); err == nil {
			c.KeepAlive = time.Duration(val) * time.Second
		}
	}
	if rate := os.Getenv("VOICECHAT_CAPTURE_RATE"); rate != "" {
		if val, err := strconv.Atoi(rate); err == nil {
			c.CaptureRate = val
		}
	}
	if rate := os.Getenv("VOICECHAT_TRANSPORT_RATE"); rate != "" {
		if val, err := strconv.Atoi(rate); err == nil {
			c.TransportRate = val
		}
	}
	if size := os.Getenv("VOICECHAT_BUFFER_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil {
			c.BufferSize = val
		}
	}
	if deviceIDStr := os.Getenv("VOICECHAT_AUDIO_DEVICE_ID"); deviceIDStr != "" {
		if deviceID, err := strconv.Atoi(deviceIDStr); err == nil {
			c.AudioDeviceID = &deviceID
		}
	}

	if level := os.Getenv("VOICECHAT_DEBUG_LEVEL"); level != "" {
		c.DebugLevel = level
	}
	c.DebugWebsocket = os.Getenv("VOICECHAT_DEBUG_WEBSOCKET") == "true"
	c.DebugAudio = os.Getenv("VOICECHAT_DEBUG_AUDIO") == "true"
}

// Validate returns list of issues
func (c *ChatConfig) Validate() []string {
	issues := []string{}

	if !strings.HasPrefix(c.WsEndpoint, "ws") {
		issues = append(issues, "Invalid WebSocket endpoint format")
	}

	if c.UseTokenAuth && os.Getenv("VOICECHAT_API_KEY") == "" {
		issues = append(issues, "VOICECHAT_API_KEY environment variable not set but token auth is enabled")
	}

	if c.SilenceThreshold <= 0 {
		issues = append(issues, "Silence threshold must be positive")
	}
	if c.SilenceFrames <= 0 {
		issues = append(issues, "Silence frame count must be positive")
	}
	if c.CaptureRate <= 0 || c.TransportRate <= 0 {
		issues = append(issues, "Sample rates must be positive")
	}
	if c.TransportRate > c.CaptureRate {
		issues = append(issues, "Transport rate above capture rate is not supported by the downsampler")
	}
	if c.BufferSize <= 0 {
		issues = append(issues, "Buffer size must be positive")
	}

	validLevels := []string{"DEBUG", "INFO", "WARNING", "ERROR"}
	found := false
	for _, level := range validLevels {
		if level == c.DebugLevel {
			found = true
			break
		}
	}
	if !found {
		issues = append(issues, fmt.Sprintf("Invalid debug level: %s", c.DebugLevel))
	}

	return issues
}

func (c *ChatConfig) PrintConfig() {
	fmt.Println("🎧 Voice Chat SDK Configuration")
	fmt.Println("==================================================")
	fmt.Printf("WebSocket Endpoint: %s\n", c.WsEndpoint)
	fmt.Printf("API Base URL: %s\n", c.APIBaseURL)
	fmt.Printf("User Name: %s\n", c.UserName)
	fmt.Printf("Use Token Auth: %t\n", c.UseTokenAuth)
	fmt.Printf("Gain: %.1f\n", c.Gain)
	fmt.Printf("Silence Threshold: %.4f\n", c.SilenceThreshold)
	fmt.Printf("Silence Frames: %d\n", c.SilenceFrames)
	fmt.Printf("EOF Debounce: %s\n", c.EOFDebounce)
	fmt.Printf("Keep-Alive Interval: %s\n", c.KeepAlive)
	fmt.Printf("Capture Rate: %d Hz\n", c.CaptureRate)
	fmt.Printf("Transport Rate: %d Hz\n", c.TransportRate)
	fmt.Printf("Buffer Size: %d samples\n", c.BufferSize)
	fmt.Printf("Debug Level: %s\n", c.DebugLevel)
	fmt.Printf("Debug WebSocket: %t\n", c.DebugWebsocket)
	fmt.Printf("Debug Audio: %t\n", c.DebugAudio)

	if c.AudioDeviceID != nil {
		fmt.Printf("Audio Device ID: %d\n", *c.AudioDeviceID)
	} else {
		fmt.Println("Audio Device: Default")
	}
}
