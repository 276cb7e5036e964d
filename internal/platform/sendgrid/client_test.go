package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
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

func TestNewRequiresKeyAndSender(t *testing.T) {
	if _, err := New(testLogger(t), Config{FromEmail: "a@b.c"}); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := New(testLogger(t), Config{APIKey: "k"}); err == nil {
		t.Fatalf("expected missing sender error")
	}
}

func TestSendPostsMailAndReturnsMessageID(t *testing.T) {
	var got mailSend
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != mailSendPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sg-key" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := New(testLogger(t), Config{APIKey: "sg-key", BaseURL: srv.URL, FromEmail: "alerts@aura.test", FromName: "Aura"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := c.Send(context.Background(), Message{
		ToEmail:  "doc@aura.test",
		ToName:   "Dr. Who",
		Subject:  "Alert",
		Text:     "body",
		Category: "critical-alert",
		Args:     map[string]string{"alert_id": "a-1"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "msg-1" || res.StatusCode != http.StatusAccepted {
		t.Fatalf("result = %+v", res)
	}
	if got.From.Email != "alerts@aura.test" || len(got.Personalizations) != 1 {
		t.Fatalf("wire = %+v", got)
	}
	p := got.Personalizations[0]
	if p.To[0].Email != "doc@aura.test" || p.CustomArgs["alert_id"] != "a-1" {
		t.Fatalf("personalization = %+v", p)
	}
	if len(got.Categories) != 1 || got.Content[0].Type != "text/plain" {
		t.Fatalf("wire = %+v", got)
	}
}

func TestSendRejectsIncompleteMessage(t *testing.T) {
	c, _ := New(testLogger(t), Config{APIKey: "k", BaseURL: "http://127.0.0.1:1", FromEmail: "a@b.c"})
	_, err := c.Send(context.Background(), Message{ToEmail: "x@y.z", Text: "t"})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("err = %v", err)
	}
}

func TestSendSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad to"}]}`))
	}))
	defer srv.Close()

	c, _ := New(testLogger(t), Config{APIKey: "k", BaseURL: srv.URL, FromEmail: "a@b.c"})
	_, err := c.Send(context.Background(), Message{ToEmail: "x", Subject: "s", Text: "t"})
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest || he.Error() != "sendgrid http 400: bad to" {
		t.Fatalf("err = %v", err)
	}
}
