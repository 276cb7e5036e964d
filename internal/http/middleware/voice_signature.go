package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/aura-backend/internal/http/response"
	"github.com/yungbote/aura-backend/internal/platform/apierr"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

const (
	headerVoiceSignature = "ElevenLabs-Signature"
	voiceSignatureMaxAge = 30 * time.Minute
	maxHookBodyBytes     = 1 << 20
)

// VoiceSignature verifies ElevenLabs webhook callbacks. The header has the
// form "t=<unix seconds>,v0=<hex HMAC-SHA256(secret, t + "." + body)>".
// Stale timestamps are rejected. An empty secret disables the check (local dev).
func VoiceSignature(log *logger.Logger, secret string, now func() time.Time) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	log = log.With("middleware", "VoiceSignature")
	if secret == "" {
		log.Warn("ELEVENLABS_WEBHOOK_SECRET not set; voice status callbacks are not verified")
		return func(c *gin.Context) { c.Next() }
	}
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		ts, sig, ok := parseVoiceSignature(c.GetHeader(headerVoiceSignature))
		if !ok {
			response.RespondAPIError(c, apierr.Forbidden(nil))
			return
		}
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxHookBodyBytes))
		if err != nil {
			response.RespondAPIError(c, apierr.BadRequest("invalid_body", err))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		age := now().Sub(time.Unix(ts, 0))
		if age > voiceSignatureMaxAge || age < -voiceSignatureMaxAge {
			log.Warn("Voice callback timestamp outside tolerance", "age", age.String())
			response.RespondError(c, http.StatusForbidden, "bad_signature", errInvalidSignature)
			return
		}
		expected := VoiceSignatureFor(secret, ts, body)
		if !hmac.Equal([]byte(expected), []byte(sig)) {
			log.Warn("Voice signature mismatch", "path", c.FullPath())
			response.RespondError(c, http.StatusForbidden, "bad_signature", errInvalidSignature)
			return
		}
		c.Next()
	}
}

// VoiceSignatureFor is the lowercase hex v0 value for ts and body.
func VoiceSignatureFor(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10) + "."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseVoiceSignature(header string) (ts int64, sig string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, "", false
			}
			ts = n
		case "v0":
			sig = strings.ToLower(v)
		}
	}
	return ts, sig, ts > 0 && sig != ""
}
