package voicechat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NumberService talks to the numbering collaborator that maps telephony
// numbers onto agents. It is independent of the audio path: a client
// can stream against an agent with or without a number assigned.
type NumberService struct {
	baseURL    string
	apiKey     *string
	httpClient *http.Client
}

func NewNumberService(baseURL string, apiKey *string) *NumberService {
	if baseURL == "" {
		baseURL = "http://localhost:5001"
	}
	return &NumberService{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (ns *NumberService) request(method, endpoint string, body interface{}) ([]byte, error) {
	url := ns.baseURL + endpoint
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, WrapError(err, ErrCodeJSONParse)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, WrapError(err, ErrCodeAPIRequest)
	}
	req.Header.Set("Content-Type", "application/json")
	if ns.apiKey != nil {
		req.Header.Set("Authorization", "Bearer "+*ns.apiKey)
	}

	resp, err := ns.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(err, ErrCodeAPIRequest).AddDetail("url", url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(err, ErrCodeAPIRequest)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewChatError(fmt.Sprintf("%s %s returned %s", method, endpoint, resp.Status), ErrCodeAPIRequest).
			AddDetail("status", resp.StatusCode).
			AddDetail("body", string(data))
	}
	return data, nil
}

// ListNumbers returns the telephony numbers available to this account.
func (ns *NumberService) ListNumbers() ([]PhoneNumber, error) {
	data, err := ns.request(http.MethodGet, "/api/numbers/", nil)
	if err != nil {
		return nil, err
	}
	var numbers []PhoneNumber
	if err := json.Unmarshal(data, &numbers); err != nil {
		return nil, WrapError(err, ErrCodeJSONParse)
	}
	return numbers, nil
}

// AssignNumber attaches a number (by provider SID) to an agent.
func (ns *NumberService) AssignNumber(agentID, sid string) error {
	_, err := ns.request(http.MethodPost, "/api/numbers/assign/", map[string]string{
		"agent_id": agentID,
		"sid":      sid,
	})
	return err
}

// UnassignNumber detaches a number from an agent.
func (ns *NumberService) UnassignNumber(agentID, phoneNumber string) error {
	_, err := ns.request(http.MethodPost, "/api/numbers/unassign/", map[string]string{
		"agent_id":     agentID,
		"phone_number": phoneNumber,
	})
	return err
}

// AssignedNumber returns the number currently mapped to an agent, or
// nil when none is assigned.
func (ns *NumberService) AssignedNumber(agentID string) (*PhoneNumber, error) {
	data, err := ns.request(http.MethodGet, "/api/twilio/assigned/"+agentID+"/", nil)
	if err != nil {
		return nil, err
	}
	var number PhoneNumber
	if err := json.Unmarshal(data, &number); err != nil {
		return nil, WrapError(err, ErrCodeJSONParse)
	}
	if number.Number == "" && number.SID == "" {
		return nil, nil
	}
	return &number, nil
}
