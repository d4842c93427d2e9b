package voicechat

// Error codes as constants
const (
	ErrCodePermissionDenied  = "PERMISSION_DENIED"
	ErrCodeDeviceUnavailable = "DEVICE_UNAVAILABLE"
	ErrCodeConnectionFailed  = "CONNECTION_FAILED"
	ErrCodeTransport         = "TRANSPORT_ERROR"
	ErrCodeDecode            = "DECODE_ERROR"
	ErrCodePlayback          = "PLAYBACK_ERROR"
	ErrCodeConfigInvalid     = "CONFIG_INVALID"
	ErrCodeTokenFailed       = "TOKEN_GENERATION_FAILED"
	ErrCodeAPIRequest        = "API_REQUEST_FAILED"
	ErrCodeJSONParse         = "JSON_PARSE_ERROR"
	ErrCodeAlreadyActive     = "ALREADY_ACTIVE"
	ErrCodeUnknown           = "UNKNOWN_ERROR"
)

// Specific error creators with common codes
func NewPermissionError(message string) *ChatError {
	return NewChatError(message, ErrCodePermissionDenied)
}

func NewDeviceError(message string) *ChatError {
	return NewChatError(message, ErrCodeDeviceUnavailable)
}

func NewConnectionError(message string) *ChatError {
	return NewChatError(message, ErrCodeConnectionFailed)
}

func NewTransportError(message string) *ChatError {
	return NewChatError(message, ErrCodeTransport)
}

func NewDecodeError(message string) *ChatError {
	return NewChatError(message, ErrCodeDecode)
}

func NewPlaybackError(message string) *ChatError {
	return NewChatError(message, ErrCodePlayback)
}

func NewConfigError(message string) *ChatError {
	return NewChatError(message, ErrCodeConfigInvalid)
}

// Helper to wrap any error as ChatError
func WrapError(err error, code string) *ChatError {
	if err == nil {
		return nil
	}
	cErr := NewChatError(err.Error(), code)
	cErr.err = err
	return cErr
}

// Helper to add details to an existing ChatError
func (e *ChatError) AddDetail(key string, value interface{}) *ChatError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Helper to get error details
func (e *ChatError) GetDetail(key string) (interface{}, bool) {
	if e.Details == nil {
		return nil, false
	}
	value, exists := e.Details[key]
	return value, exists
}

// Helper to check if error has specific code
func IsErrorCode(err *ChatError, code string) bool {
	if err == nil {
		return false
	}
	return err.Code == code
}

// IsTerminalError reports whether the error ends the session. Decode
// failures on individual chunks are local and survivable; everything
// touching the device or the socket is not.
func IsTerminalError(err *ChatError) bool {
	if err == nil {
		return false
	}
	switch err.Code {
	case ErrCodeDecode, ErrCodePlayback:
		return false
	}
	return true
}
