package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
)

// SendPath is the relay endpoint for submissions.
const SendPath = "/api/chat/send-email"

const maxResponseBytes = 64 << 10

// Client submits forms to one relay.
type Client struct {
	endpoint  string
	client    *http.Client
	timeout   time.Duration
	userAgent string
	msg       messages
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithTimeout bounds each request. Zero leaves the context in charge.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d >= 0 {
			cl.timeout = d
		}
	}
}

// WithTranslator localizes error messages. Default is the built-in German text.
func WithTranslator(tr Translator, lang string) Option {
	return func(cl *Client) {
		cl.msg = messages{tr: tr, lang: lang}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// New creates a client for the relay at baseURL, e.g. "http://localhost:4000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidBaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidBaseURL)
	}

	c := &Client{
		endpoint:  strings.TrimRight(u.String(), "/") + SendPath,
		client:    cleanhttp.DefaultPooledClient(),
		timeout:   30 * time.Second,
		userAgent: "contactrelay-client/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type sendResponse struct {
	Success   bool                 `json:"success"`
	MessageID string               `json:"messageId"`
	Error     string               `json:"error"`
	Details   []contact.FieldError `json:"details"`
}

// Send posts s and returns the provider message id. Failures are *APIError.
func (c *Client) Send(ctx context.Context, s contact.Submission) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("relayclient: marshal submission: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("relayclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &APIError{Code: CodeNetwork, Message: c.msg.get("client.network"), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	var out sendResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if decodeErr != nil {
			return "", &APIError{Status: resp.StatusCode, Code: CodeUnknown, Message: c.msg.get("client.unknown"), Err: decodeErr}
		}
		if out.MessageID == "" {
			return "", &APIError{Status: resp.StatusCode, Code: CodeUnknown, Message: c.msg.get("client.unknown"), Err: ErrEmptyMessageID}
		}
		return out.MessageID, nil
	}

	return "", c.statusError(resp.StatusCode, out)
}

func (c *Client) statusError(status int, out sendResponse) *APIError {
	e := &APIError{Status: status, Details: out.Details}
	switch {
	case status == http.StatusTooManyRequests:
		e.Code = CodeRateLimit
		e.Message = c.msg.get("client.rate_limit")
	case status == http.StatusBadRequest:
		e.Code = CodeValidation
		e.Message = firstNonEmpty(out.Error, c.msg.get("client.validation"))
	case status >= 500:
		e.Code = CodeServer
		e.Message = c.msg.get("client.server")
	default:
		e.Code = CodeUnknown
		e.Message = firstNonEmpty(out.Error, c.msg.get("client.unknown"))
	}
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
