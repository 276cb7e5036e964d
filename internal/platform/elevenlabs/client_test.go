package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/aura-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestConfigured(t *testing.T) {
	log := testLogger(t)
	if New(log, Config{APIKey: "k"}).Configured() {
		t.Fatalf("missing agent should not be configured")
	}
	if !New(log, Config{APIKey: "k", AgentID: "a", AgentPhoneNumberID: "p"}).Configured() {
		t.Fatalf("expected configured")
	}
}

func TestOutboundCallSendsPayloadAndParsesIDs(t *testing.T) {
	var got outboundCallWire
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != outboundCallPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "key" {
			t.Errorf("api key header = %q", r.Header.Get("xi-api-key"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"call_sid":"CA1","conversationId":"conv-9"}`))
	}))
	defer srv.Close()

	c := New(testLogger(t), Config{APIKey: "key", AgentID: "agent", AgentPhoneNumberID: "phn", BaseURL: srv.URL})
	res, err := c.OutboundCall(context.Background(), OutboundCallRequest{
		ToNumber:          "+15551234567",
		CustomerID:        "doctor-1",
		DynamicVariables:  map[string]string{"patient_name": "Sam"},
		StatusCallbackURL: "https://aura.test/hooks/voice/status",
	})
	if err != nil {
		t.Fatalf("OutboundCall: %v", err)
	}
	if res.CallSID != "CA1" || res.ConversationID != "conv-9" {
		t.Fatalf("result = %+v", res)
	}
	if got.AgentID != "agent" || got.AgentPhoneNumberID != "phn" || got.ToNumber != "+15551234567" {
		t.Fatalf("wire = %+v", got)
	}
	if got.InitiationData == nil || got.InitiationData.Source != clientSource || got.InitiationData.CustomerID != "doctor-1" {
		t.Fatalf("initiation = %+v", got.InitiationData)
	}
	if got.DynamicVariables["patient_name"] != "Sam" {
		t.Fatalf("variables = %+v", got.DynamicVariables)
	}
}

func TestOutboundCallRejectsNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(testLogger(t), Config{APIKey: "key", AgentID: "agent", AgentPhoneNumberID: "phn", BaseURL: srv.URL})
	_, err := c.OutboundCall(context.Background(), OutboundCallRequest{ToNumber: "+1"})
	he, ok := err.(*HTTPError)
	if !ok || he.StatusCode != http.StatusAccepted {
		t.Fatalf("err = %v", err)
	}
}
