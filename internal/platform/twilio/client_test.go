package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/yungbote/aura-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, url string, retries int) Client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c, err := New(log, Config{
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "+15550001111",
		BaseURL:    url,
		MaxRetries: retries,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSendSMSPostsFormWithBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("basic auth = %q %q %v", user, pass, ok)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("form: %v", err)
		}
		if r.PostForm.Get("To") != "+15551234567" || r.PostForm.Get("From") != "+15550001111" {
			t.Errorf("form = %v", r.PostForm)
		}
		if r.PostForm.Get("StatusCallback") != "https://aura.test/hooks/sms/status" {
			t.Errorf("callback = %q", r.PostForm.Get("StatusCallback"))
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	}))
	defer srv.Close()

	msg, err := newTestClient(t, srv.URL, 0).SendSMS(context.Background(), SendSMSRequest{
		To:             "+15551234567",
		Body:           "hello",
		StatusCallback: "https://aura.test/hooks/sms/status",
	})
	if err != nil {
		t.Fatalf("SendSMS: %v", err)
	}
	if msg.SID != "SM1" || msg.Status != "queued" {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestSendSMSRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"sid":"SM2","status":"queued"}`))
	}))
	defer srv.Close()

	msg, err := newTestClient(t, srv.URL, 1).SendSMS(context.Background(), SendSMSRequest{To: "+1", Body: "x"})
	if err != nil {
		t.Fatalf("SendSMS: %v", err)
	}
	if msg.SID != "SM2" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("msg=%+v calls=%d", msg, calls)
	}
}

func TestSendSMSDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 3).SendSMS(context.Background(), SendSMSRequest{To: "+1", Body: "x"})
	he, ok := err.(*HTTPError)
	if !ok || he.Code != 21211 || he.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d", calls)
	}
}
