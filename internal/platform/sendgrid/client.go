package sendgrid

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

const mailSendPath = "/v3/mail/send"

// Client sends plain-text clinician notices through the SendGrid v3 mail API.
type Client interface {
	Send(ctx context.Context, msg Message) (*Receipt, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	FromEmail  string
	FromName   string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     envutil.String("SENDGRID_API_KEY", ""),
		BaseURL:    envutil.String("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
		FromEmail:  envutil.String("SENDGRID_FROM_EMAIL", ""),
		FromName:   envutil.String("SENDGRID_FROM_NAME", "Aura Alerts"),
		Timeout:    envutil.Seconds("SENDGRID_TIMEOUT_SECONDS", 15*time.Second),
		MaxRetries: envutil.Int("SENDGRID_MAX_RETRIES", 2),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing SENDGRID_API_KEY")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("missing SENDGRID_FROM_EMAIL")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.MaxRetries = max(cfg.MaxRetries, 0)
	return &client{
		log:  log.With("client", "SendGridClient"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

// Message is one email to one recipient.
type Message struct {
	ToEmail  string
	ToName   string
	Subject  string
	Text     string
	Category string
	// Args come back on SendGrid event webhooks.
	Args map[string]string
}

type Receipt struct {
	StatusCode int
	MessageID  string
}

var ErrInvalidMessage = errors.New("sendgrid: invalid message")

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To         []address         `json:"to"`
	CustomArgs map[string]string `json:"custom_args,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailSend struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
	Categories       []string          `json:"categories,omitempty"`
}

func (c *client) build(msg Message) (*mailSend, error) {
	to := strings.TrimSpace(msg.ToEmail)
	subject := strings.TrimSpace(msg.Subject)
	text := strings.TrimSpace(msg.Text)
	switch {
	case to == "":
		return nil, fmt.Errorf("%w: recipient required", ErrInvalidMessage)
	case subject == "":
		return nil, fmt.Errorf("%w: subject required", ErrInvalidMessage)
	case text == "":
		return nil, fmt.Errorf("%w: text required", ErrInvalidMessage)
	}
	wire := &mailSend{
		Personalizations: []personalization{{
			To:         []address{{Email: to, Name: strings.TrimSpace(msg.ToName)}},
			CustomArgs: msg.Args,
		}},
		From:    address{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject: subject,
		Content: []content{{Type: "text/plain", Value: text}},
	}
	if msg.Category != "" {
		wire.Categories = []string{msg.Category}
	}
	return wire, nil
}

func (c *client) Send(ctx context.Context, msg Message) (*Receipt, error) {
	wire, err := c.build(msg)
	if err != nil {
		return nil, err
	}
	resp, err := c.post(ctx, wire)
	if err != nil {
		return nil, err
	}
	return &Receipt{
		StatusCode: resp.StatusCode,
		MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
	}, nil
}

// HTTPError is a non-2xx reply. The first API error message, when present,
// becomes the error text.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 500 {
		msg = msg[:500] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) post(ctx context.Context, wire *mailSend) (*http.Response, error) {
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}
	backoff := time.Second
	for attempt := 0; ; attempt++ {
		resp, err := c.postOnce(ctx, body)
		if err == nil {
			return resp, nil
		}
		if attempt >= c.cfg.MaxRetries || !httpx.IsRetryableError(err) {
			return nil, err
		}
		wait := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("SendGrid send retrying", "attempt", attempt+1, "sleep", wait.String(), "error", err)
		if err := httpx.Sleep(ctx, wait); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

func (c *client) postOnce(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, c.cfg.BaseURL+mailSendPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return resp, err
	}
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}
	he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	var parsed struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(raw, &parsed) == nil && len(parsed.Errors) > 0 {
		he.Message = strings.TrimSpace(parsed.Errors[0].Message)
	}
	return resp, he
}
