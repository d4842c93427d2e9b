package voicechat

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ChatLogger wraps zerolog for structured logging
type ChatLogger struct {
	logger zerolog.Logger
}

// LogLevel represents the logging level
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// LogConfig represents the configuration for logging
type LogConfig struct {
	Level     LogLevel
	Pretty    bool
	Output    io.Writer
	AddSource bool
	Fields    map[string]interface{}
}

// DefaultLogConfig returns a default logging configuration
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level:  InfoLevel,
		Pretty: true,
		Output: os.Stdout,
		Fields: make(map[string]interface{}),
	}
}

// NewChatLogger creates a new structured logger
func NewChatLogger(config *LogConfig) *ChatLogger {
	if config == nil {
		config = DefaultLogConfig()
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var logger zerolog.Logger

	if config.Pretty {
		logger = log.Output(zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: time.Kitchen,
		})
	} else {
		logger = zerolog.New(config.Output)
	}

	switch config.Level {
	case DebugLevel:
		logger = logger.Level(zerolog.DebugLevel)
	case InfoLevel:
		logger = logger.Level(zerolog.InfoLevel)
	case WarnLevel:
		logger = logger.Level(zerolog.WarnLevel)
	case ErrorLevel:
		logger = logger.Level(zerolog.ErrorLevel)
	case FatalLevel:
		logger = logger.Level(zerolog.FatalLevel)
	}

	logger = logger.With().Timestamp().Logger()

	if config.AddSource {
		logger = logger.With().Caller().Logger()
	}

	if len(config.Fields) > 0 {
		logger = logger.With().Fields(config.Fields).Logger()
	}

	return &ChatLogger{logger: logger}
}

// ParseLogLevel maps a config debug level string to a LogLevel.
func ParseLogLevel(level string) LogLevel {
	switch level {
	case "DEBUG":
		return DebugLevel
	case "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// WithComponent adds a component field to the logger
func (l *ChatLogger) WithComponent(component string) *ChatLogger {
	return &ChatLogger{
		logger: l.logger.With().Str("component", component).Logger(),
	}
}

// WithField adds a field to the logger
func (l *ChatLogger) WithField(key string, value interface{}) *ChatLogger {
	return &ChatLogger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// WithError adds an error field to the logger
func (l *ChatLogger) WithError(err error) *ChatLogger {
	return &ChatLogger{
		logger: l.logger.With().Err(err).Logger(),
	}
}

func (l *ChatLogger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

func (l *ChatLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *ChatLogger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *ChatLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

func (l *ChatLogger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

func (l *ChatLogger) Warnf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *ChatLogger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

func (l *ChatLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *ChatLogger) Fatal(msg string) {
	l.logger.Fatal().Msg(msg)
}

// LogAudioEvent logs audio-related events with structured fields
func (l *ChatLogger) LogAudioEvent(event string, fields map[string]interface{}) {
	l.logger.Debug().
		Str("event_type", "audio").
		Str("event", event).
		Fields(fields).
		Msg("Audio event")
}

// LogSessionEvent logs transport lifecycle events
func (l *ChatLogger) LogSessionEvent(event string, state SessionState, fields map[string]interface{}) {
	l.logger.Info().
		Str("event_type", "session").
		Str("event", event).
		Str("state", string(state)).
		Fields(fields).
		Msg("Session event")
}

// LogError logs a ChatError with structured fields
func (l *ChatLogger) LogError(err *ChatError) {
	l.logger.Error().
		Str("error_code", err.Code).
		Float64("timestamp", err.Timestamp).
		Fields(err.Details).
		Msg(err.Message)
}

// Global logger instance
var globalLogger = NewChatLogger(DefaultLogConfig())

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *ChatLogger {
	return globalLogger
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *ChatLogger) {
	globalLogger = logger
}
