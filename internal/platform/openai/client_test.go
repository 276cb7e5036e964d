package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/aura-backend/internal/platform/logger"
)

func testClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	c, err := New(log, Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "m", Timeout: 2 * time.Second, MaxRetries: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeOutput(w http.ResponseWriter, text string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"output": []any{map[string]any{
			"type":    "message",
			"role":    "assistant",
			"content": []any{map[string]any{"type": "output_text", "text": text}},
		}},
	})
}

func TestNewRequiresKey(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := New(log, Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestGenerateTextSendsHistory(t *testing.T) {
	var got responsesRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" || r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("path=%s auth=%q", r.URL.Path, r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeOutput(w, "I hear you.")
	})

	out, err := c.GenerateText(context.Background(), "be kind", []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "  "},
	}, "today was hard")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "I hear you." {
		t.Fatalf("out = %q", out)
	}
	roles := []string{}
	for _, in := range got.Input {
		roles = append(roles, in.Role)
	}
	if len(roles) != 4 || roles[0] != "system" || roles[2] != "assistant" || roles[3] != "user" {
		t.Fatalf("roles = %v", roles)
	}
	if got.Input[3].Content != "today was hard" {
		t.Fatalf("last input = %+v", got.Input[3])
	}
}

func TestGenerateJSONUsesStrictSchema(t *testing.T) {
	var format map[string]any
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req responsesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		format = req.Text.Format
		writeOutput(w, `{"rating":2.5,"confidence":0.8}`)
	})

	obj, err := c.GenerateJSON(context.Background(), "", "text", "sentiment", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["rating"].(float64) != 2.5 {
		t.Fatalf("obj = %v", obj)
	}
	if format["type"] != "json_schema" || format["name"] != "sentiment" || format["strict"] != true {
		t.Fatalf("format = %v", format)
	}
}

func TestRetriesServerErrorOnce(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		writeOutput(w, "ok")
	})
	if _, err := c.GenerateText(context.Background(), "", nil, "hi"); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad", http.StatusBadRequest)
	})
	_, err := c.GenerateText(context.Background(), "", nil, "hi")
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}
