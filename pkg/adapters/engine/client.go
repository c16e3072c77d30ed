// Package engine implements the workflow engine contract over the engine's HTTP webhooks.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/intake/internal/dto"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
)

// Default webhook paths of the engine.
const (
	DefaultGetSessionPath = "/webhook/get-session"
	DefaultChangeChatPath = "/webhook/change-chat"
	DefaultTimeout        = 15 * time.Second
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// StatusError is returned when the engine answers with a non-2xx status.
type StatusError struct {
	Operation string
	Code      int
	Body      string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("engine %s failed (%d): %s", e.Operation, e.Code, e.Body)
}

// Client implements ports.WorkflowEngine using the engine's webhooks.
type Client struct {
	baseURL        string
	getSessionPath string
	changeChatPath string
	timeout        time.Duration
	http           *http.Client
	logger         *slog.Logger
}

var _ ports.WorkflowEngine = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithPaths overrides the webhook paths.
func WithPaths(getSession, changeChat string) Option {
	return func(c *Client) {
		if getSession != "" {
			c.getSessionPath = getSession
		}
		if changeChat != "" {
			c.changeChatPath = changeChat
		}
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the engine at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		getSessionPath: DefaultGetSessionPath,
		changeChatPath: DefaultChangeChatPath,
		timeout:        DefaultTimeout,
		http:           http.DefaultClient,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSession retrieves the persisted session.
func (c *Client) GetSession(ctx context.Context, id string) (*domain.SessionRecord, error) {
	endpoint := c.baseURL + c.getSessionPath + "?" + url.Values{"session_id": {id}}.Encode()
	body, err := c.do(ctx, "get_session", id, http.MethodGet, endpoint, nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	rec, err := dto.DecodeSessionBody(body)
	if err != nil {
		return nil, err
	}
	if rec.SessionID == "" {
		rec.SessionID = id
	}
	return rec, nil
}

// UpdateField persists partial progress.
func (c *Client) UpdateField(ctx context.Context, upd domain.FieldUpdate) error {
	_, err := c.post(ctx, "update_field", upd.SessionID, dto.FromFieldUpdate(upd))
	return err
}

// SendNotification asks the engine to send the welcome email.
func (c *Client) SendNotification(ctx context.Context, n domain.Notification) error {
	_, err := c.post(ctx, "send_notification", n.SessionID, dto.FromNotification(n))
	return err
}

// Submit sends the final change request and decodes the structured reply.
// The reply status is returned as-is; interpreting "error" is up to the caller.
func (c *Client) Submit(ctx context.Context, sub domain.Submission) (domain.SubmitResult, error) {
	body, err := c.post(ctx, "submit", sub.SessionID, dto.FromSubmission(sub))
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.SubmitResult{}, errors.New("empty response from engine")
	}

	var resp dto.SubmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.SubmitResult{}, fmt.Errorf("failed to parse submit response: %w", err)
	}
	if resp.Status == "" {
		resp.Status = string(domain.SubmitOK)
	}
	return resp.Result(), nil
}

func (c *Client) post(ctx context.Context, op, sessionID string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", op, err)
	}
	return c.do(ctx, op, sessionID, http.MethodPost, c.baseURL+c.changeChatPath, data)
}

func (c *Client) do(ctx context.Context, op, sessionID, method, endpoint string, payload []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Engine call failed", "operation", op, "session_id", sessionID, "err", err)
		return nil, fmt.Errorf("engine %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	c.logger.Debug("Engine call",
		"operation", op,
		"session_id", sessionID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &StatusError{Operation: op, Code: resp.StatusCode, Body: text}
	}
	return body, nil
}
