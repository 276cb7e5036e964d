package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/aura-backend/internal/platform/ctxutil"
	"github.com/yungbote/aura-backend/internal/platform/envutil"
	"github.com/yungbote/aura-backend/internal/platform/httpx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

const (
	outboundCallPath = "/v1/convai/twilio/outbound-call"
	clientSource     = "aura_mental_health_app"
)

type Client interface {
	// Configured is false when no API key or agent is set. Callers skip the
	// voice channel entirely in that case.
	Configured() bool
	OutboundCall(ctx context.Context, req OutboundCallRequest) (*OutboundCallResult, error)
}

type Config struct {
	APIKey             string
	BaseURL            string
	AgentID            string
	AgentPhoneNumberID string
	Timeout            time.Duration
	// Outbound calls ring a phone. Retrying after an ambiguous failure can
	// ring it twice, so the default is zero.
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:             envutil.String("ELEVENLABS_API_KEY", ""),
		BaseURL:            envutil.String("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
		AgentID:            envutil.String("ELEVENLABS_CRITICAL_ALERT_AGENT_ID", ""),
		AgentPhoneNumberID: envutil.String("ELEVENLABS_AGENT_PHONE_NUMBER_ID", ""),
		Timeout:            envutil.Seconds("ELEVENLABS_TIMEOUT_SECONDS", 20*time.Second),
		MaxRetries:         envutil.Int("ELEVENLABS_MAX_RETRIES", 0),
	}
}

func NewFromEnv(log *logger.Logger) Client {
	return New(log, ConfigFromEnv())
}

// New never fails. Missing credentials yield a client whose Configured
// reports false.
func New(log *logger.Logger, cfg Config) Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.AgentID = strings.TrimSpace(cfg.AgentID)
	cfg.AgentPhoneNumberID = strings.TrimSpace(cfg.AgentPhoneNumberID)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	c := &client{
		log:        log.With("client", "ElevenLabsClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	if !c.Configured() {
		c.log.Warn("ElevenLabs not configured; voice escalation disabled")
	}
	return c
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type OutboundCallRequest struct {
	ToNumber          string
	CustomerID        string
	DynamicVariables  map[string]string
	StatusCallbackURL string
}

type OutboundCallResult struct {
	CallSID        string
	ConversationID string
	Raw            map[string]any
}

type initiationData struct {
	CustomerID string `json:"customer_id"`
	Source     string `json:"source"`
}

type outboundCallWire struct {
	AgentID            string            `json:"agent_id"`
	AgentPhoneNumberID string            `json:"agent_phone_number_id"`
	ToNumber           string            `json:"to_number"`
	DynamicVariables   map[string]string `json:"dynamic_variables,omitempty"`
	InitiationData     *initiationData   `json:"conversation_initiation_client_data,omitempty"`
	StatusCallbackURL  string            `json:"status_callback_url,omitempty"`
}

func (c *client) Configured() bool {
	return c != nil && c.cfg.APIKey != "" && c.cfg.AgentID != "" && c.cfg.AgentPhoneNumberID != ""
}

func (c *client) OutboundCall(ctx context.Context, req OutboundCallRequest) (*OutboundCallResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("elevenlabs not configured")
	}
	to := strings.TrimSpace(req.ToNumber)
	if to == "" {
		return nil, fmt.Errorf("elevenlabs: to_number required")
	}
	wire := outboundCallWire{
		AgentID:            c.cfg.AgentID,
		AgentPhoneNumberID: c.cfg.AgentPhoneNumberID,
		ToNumber:           to,
		DynamicVariables:   req.DynamicVariables,
		StatusCallbackURL:  strings.TrimSpace(req.StatusCallbackURL),
	}
	if req.CustomerID != "" {
		wire.InitiationData = &initiationData{CustomerID: req.CustomerID, Source: clientSource}
	}

	raw, err := c.do(ctx, wire)
	if err != nil {
		return nil, err
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("elevenlabs decode error: %w", err)
	}
	res := &OutboundCallResult{
		CallSID:        firstString(body, "callSid", "call_sid"),
		ConversationID: firstString(body, "conversation_id", "conversationId"),
		Raw:            body,
	}
	c.log.Info("ElevenLabs outbound call started",
		"call_sid", res.CallSID,
		"conversation_id", res.ConversationID,
		"variables", len(req.DynamicVariables),
	)
	return res, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "elevenlabs: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if len(msg) > 1000 {
		msg = msg[:1000] + "..."
	}
	return fmt.Sprintf("elevenlabs http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) do(ctx context.Context, body any) ([]byte, error) {
	backoff := 1 * time.Second
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, raw, err := c.doOnce(ctx, body)
		if err == nil {
			return raw, nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return nil, err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 5*time.Second))
		c.log.Warn("ElevenLabs request retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}
	return nil, errors.New("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, c.cfg.BaseURL+outboundCallPath, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}
