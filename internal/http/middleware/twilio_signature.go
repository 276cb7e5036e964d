package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/aura-backend/internal/http/response"
	"github.com/yungbote/aura-backend/internal/platform/apierr"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

const headerTwilioSignature = "X-Twilio-Signature"

var errInvalidSignature = errors.New("invalid request signature")

// TwilioSignature verifies X-Twilio-Signature on form-encoded callbacks.
// The signed URL is publicBaseURL plus the request URI, matching the
// status callback the dispatcher registered. An empty auth token disables
// the check (local dev).
func TwilioSignature(log *logger.Logger, authToken, publicBaseURL string) gin.HandlerFunc {
	authToken = strings.TrimSpace(authToken)
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	log = log.With("middleware", "TwilioSignature")
	if authToken == "" {
		log.Warn("TWILIO_AUTH_TOKEN not set; SMS status callbacks are not verified")
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		sig := strings.TrimSpace(c.GetHeader(headerTwilioSignature))
		if sig == "" {
			response.RespondAPIError(c, apierr.Forbidden(nil))
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			response.RespondAPIError(c, apierr.BadRequest("invalid_form", err))
			return
		}
		url := base + c.Request.URL.RequestURI()
		expected := TwilioSignatureFor(authToken, url, c.Request.PostForm)
		if !hmac.Equal([]byte(expected), []byte(sig)) {
			log.Warn("Twilio signature mismatch", "path", c.FullPath())
			response.RespondError(c, http.StatusForbidden, "bad_signature", errInvalidSignature)
			return
		}
		c.Next()
	}
}

// TwilioSignatureFor is base64(HMAC-SHA1(token, url + sorted key/value pairs)).
func TwilioSignatureFor(authToken, url string, form map[string][]string) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		for _, v := range form[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
