package voicechat

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	tokenExpiry     = 10 * time.Minute
	apiKeyMinLength = 32
)

// GenerateSessionToken signs a short-lived HS256 token from
// VOICECHAT_API_KEY for the WebSocket dial header. Only used when the
// config enables token auth; the wire protocol itself carries no
// credentials.
func GenerateSessionToken(agentID string) (string, *ChatError) {
	apiKey := os.Getenv("VOICECHAT_API_KEY")
	if apiKey == "" {
		return "", NewChatError("VOICECHAT_API_KEY not set", ErrCodeTokenFailed)
	}
	if len(apiKey) < apiKeyMinLength {
		return "", NewChatError("API key too short", ErrCodeTokenFailed)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"agent_id": agentID,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(apiKey))
	if err != nil {
		return "", WrapError(err, ErrCodeTokenFailed)
	}
	return signed, nil
}

// DecodeSessionToken parses and validates a session token against the
// API key it was signed with.
func DecodeSessionToken(tokenString, apiKey string) (jwt.MapClaims, *ChatError) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(apiKey), nil
	})
	if err != nil {
		return nil, WrapError(err, ErrCodeTokenFailed)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, NewChatError("invalid session token", ErrCodeTokenFailed)
	}
	return claims, nil
}
