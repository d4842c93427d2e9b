package voicechat

import "testing"

func TestGenerateSessionTokenRoundTrip(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	t.Setenv("VOICECHAT_API_KEY", key)

	token, cErr := GenerateSessionToken("agent-1")
	if cErr != nil {
		t.Fatalf("GenerateSessionToken failed: %v", cErr)
	}

	claims, cErr := DecodeSessionToken(token, key)
	if cErr != nil {
		t.Fatalf("DecodeSessionToken failed: %v", cErr)
	}
	if claims["agent_id"] != "agent-1" {
		t.Errorf("agent_id claim = %v", claims["agent_id"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Error("exp claim missing")
	}
}

func TestGenerateSessionTokenRejectsMissingKey(t *testing.T) {
	t.Setenv("VOICECHAT_API_KEY", "")
	if _, cErr := GenerateSessionToken("agent-1"); cErr == nil {
		t.Fatal("expected an error without an API key")
	}
}

func TestGenerateSessionTokenRejectsShortKey(t *testing.T) {
	t.Setenv("VOICECHAT_API_KEY", "too-short")
	_, cErr := GenerateSessionToken("agent-1")
	if cErr == nil {
		t.Fatal("expected an error for a short API key")
	}
	if cErr.Code != ErrCodeTokenFailed {
		t.Errorf("code = %s, want %s", cErr.Code, ErrCodeTokenFailed)
	}
}

func TestDecodeSessionTokenWrongKey(t *testing.T) {
	t.Setenv("VOICECHAT_API_KEY", "0123456789abcdef0123456789abcdef")
	token, cErr := GenerateSessionToken("agent-1")
	if cErr != nil {
		t.Fatal(cErr)
	}
	if _, cErr := DecodeSessionToken(token, "another-key-another-key-another!"); cErr == nil {
		t.Fatal("token validated against the wrong key")
	}
}
