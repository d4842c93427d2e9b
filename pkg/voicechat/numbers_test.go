package voicechat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNumberServiceListNumbers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/numbers/" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]PhoneNumber{
			{SID: "PN1", Number: "+15550001111", FriendlyName: "Support"},
			{SID: "PN2", Number: "+15550002222"},
		})
	}))
	defer server.Close()

	service := NewNumberService(server.URL, nil)
	numbers, err := service.ListNumbers()
	if err != nil {
		t.Fatalf("ListNumbers failed: %v", err)
	}
	if len(numbers) != 2 {
		t.Fatalf("got %d numbers, want 2", len(numbers))
	}
	if numbers[0].SID != "PN1" || numbers[0].Number != "+15550001111" {
		t.Errorf("first number = %+v", numbers[0])
	}
}

func TestNumberServiceAssign(t *testing.T) {
	var gotBody map[string]string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/numbers/assign/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	key := "test-key"
	service := NewNumberService(server.URL, &key)
	if err := service.AssignNumber("agent-1", "PN1"); err != nil {
		t.Fatalf("AssignNumber failed: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotBody["agent_id"] != "agent-1" || gotBody["sid"] != "PN1" {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestNumberServiceUnassign(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/numbers/unassign/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewNumberService(server.URL, nil)
	if err := service.UnassignNumber("agent-1", "+15550001111"); err != nil {
		t.Fatalf("UnassignNumber failed: %v", err)
	}
	if gotBody["phone_number"] != "+15550001111" {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestNumberServiceAssignedNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/twilio/assigned/agent-1/":
			json.NewEncoder(w).Encode(PhoneNumber{SID: "PN1", Number: "+15550001111", AgentID: "agent-1"})
		case "/api/twilio/assigned/agent-2/":
			w.Write([]byte("{}"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	service := NewNumberService(server.URL, nil)

	number, err := service.AssignedNumber("agent-1")
	if err != nil {
		t.Fatalf("AssignedNumber failed: %v", err)
	}
	if number == nil || number.Number != "+15550001111" {
		t.Errorf("assigned number = %+v", number)
	}

	number, err = service.AssignedNumber("agent-2")
	if err != nil {
		t.Fatalf("AssignedNumber for bare agent failed: %v", err)
	}
	if number != nil {
		t.Errorf("expected nil for unassigned agent, got %+v", number)
	}
}

func TestNumberServiceErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent not found", http.StatusNotFound)
	}))
	defer server.Close()

	service := NewNumberService(server.URL, nil)
	err := service.AssignNumber("missing", "PN1")
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	cErr, ok := err.(*ChatError)
	if !ok || cErr.Code != ErrCodeAPIRequest {
		t.Errorf("expected %s, got %v", ErrCodeAPIRequest, err)
	}
	if status, ok := cErr.GetDetail("status"); !ok || status != http.StatusNotFound {
		t.Errorf("status detail = %v", status)
	}
}
