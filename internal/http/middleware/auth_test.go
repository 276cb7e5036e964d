package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/platform/ctxutil"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

const secret = "unit-secret"

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func sign(t *testing.T, key string, method jwt.SigningMethod, sub, role string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := tok.SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func authRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(newTestLogger(t), secret, "")
	r := gin.New()
	echo := func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID.String(), "role": rd.Role})
	}
	r.GET("/api/me", am.RequireAuth(), echo)
	r.GET("/api/alerts/stream", am.RequireAuth(), RequireRole(types.RoleDoctor), echo)
	return r
}

func TestRequireAuth(t *testing.T) {
	r := authRouter(t)
	user := uuid.New().String()
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"valid", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, user, "patient", future), http.StatusOK},
		{"lowercase scheme", "bearer " + sign(t, secret, jwt.SigningMethodHS256, user, "doctor", future), http.StatusOK},
		{"wrong key", "Bearer " + sign(t, "other", jwt.SigningMethodHS256, user, "patient", future), http.StatusUnauthorized},
		{"wrong alg", "Bearer " + sign(t, secret, jwt.SigningMethodHS512, user, "patient", future), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, user, "patient", time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"bad subject", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, "nope", "patient", future), http.StatusUnauthorized},
		{"unknown role", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, user, "admin", future), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestStreamAcceptsQueryToken(t *testing.T) {
	r := authRouter(t)
	future := time.Now().Add(time.Hour)
	doctor := sign(t, secret, jwt.SigningMethodHS256, uuid.New().String(), "doctor", future)
	patient := sign(t, secret, jwt.SigningMethodHS256, uuid.New().String(), "patient", future)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts/stream?token="+doctor, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("doctor stream = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts/stream?token="+patient, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("patient stream = %d", rec.Code)
	}
	// query tokens are only honoured on the stream endpoint
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me?token="+doctor, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("query token on /api/me = %d", rec.Code)
	}
}

func TestTwilioSignatureIgnoresParamOrder(t *testing.T) {
	a := TwilioSignatureFor("tok", "https://x.test/hooks/sms/status", map[string][]string{"B": {"2"}, "A": {"1"}})
	b := TwilioSignatureFor("tok", "https://x.test/hooks/sms/status", map[string][]string{"A": {"1"}, "B": {"2"}})
	if a != b || a == "" {
		t.Fatalf("signatures differ: %q vs %q", a, b)
	}
	if c := TwilioSignatureFor("other", "https://x.test/hooks/sms/status", map[string][]string{"A": {"1"}, "B": {"2"}}); c == a {
		t.Fatalf("signature should depend on token")
	}
}

func voiceRouter(t *testing.T, now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/hooks/voice/status", VoiceSignature(newTestLogger(t), "whsec", func() time.Time { return now }), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	return r
}

func TestVoiceSignature(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	body := `{"type":"call.completed","call_sid":"CA1"}`
	valid := fmt.Sprintf("t=%d,v0=%s", now.Unix(), VoiceSignatureFor("whsec", now.Unix(), []byte(body)))
	stale := now.Add(-time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", valid, http.StatusOK},
		{"missing", "", http.StatusForbidden},
		{"wrong secret", fmt.Sprintf("t=%d,v0=%s", now.Unix(), VoiceSignatureFor("other", now.Unix(), []byte(body))), http.StatusForbidden},
		{"stale", fmt.Sprintf("t=%d,v0=%s", stale, VoiceSignatureFor("whsec", stale, []byte(body))), http.StatusForbidden},
		{"garbled", "t=abc,v0=deadbeef", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/hooks/voice/status", strings.NewReader(body))
			if tc.header != "" {
				req.Header.Set(headerVoiceSignature, tc.header)
			}
			voiceRouter(t, now).ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
			if tc.want == http.StatusOK && w.Body.String() != body {
				t.Fatalf("handler saw body %q", w.Body.String())
			}
		})
	}
}

func TestVoiceSignatureDisabledWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/hooks/voice/status", VoiceSignature(newTestLogger(t), "", nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hooks/voice/status", strings.NewReader("{}")))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
