// Package backend is the adapter for the remote auth/data backend. Every
// non-2xx response is normalized here into a notify.StatusError before
// anything upstream sees it; call sites never probe raw response shapes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/wlp-app/wlp/internal/core/domain"
	"github.com/wlp-app/wlp/internal/metrics"
	"github.com/wlp-app/wlp/internal/notify"
	"github.com/wlp-app/wlp/internal/validate"
)

// Client talks to the planner backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	session *domain.Session
}

// NewClient creates a backend client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// errorEnvelope is the wire shape the backend uses for failures. Both fields
// are optional; the HTTP status fills the gap.
type errorEnvelope struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type sessionPayload struct {
	AccessToken string `json:"access_token" validate:"required"`
	ExpiresAt   int64  `json:"expires_at"`
	User        struct {
		ID    string `json:"id" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	} `json:"user" validate:"required"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new user. A duplicate email comes back as a 409
// StatusError and classifies as EMAIL_EXISTS.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	err := c.do(ctx, http.MethodPost, "/auth/signup", credentials{Email: email, Password: password}, nil)
	c.record("signup", err)
	return err
}

// SignIn authenticates and stores the session for subsequent calls.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var payload sessionPayload
	err := c.do(ctx, http.MethodPost, "/auth/signin", credentials{Email: email, Password: password}, &payload)
	c.record("signin", err)
	if err != nil {
		return nil, err
	}
	session, err := c.adoptSession(&payload)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Session re-validates the current session against the backend. This is the
// lightweight connectivity probe offered on the offline surface.
func (c *Client) Session(ctx context.Context) (*domain.Session, error) {
	var payload sessionPayload
	err := c.do(ctx, http.MethodGet, "/auth/session", nil, &payload)
	c.record("session", err)
	if err != nil {
		return nil, err
	}
	return c.adoptSession(&payload)
}

// SignOut drops the session on both sides.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/signout", nil, nil)
	c.record("signout", err)
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	return err
}

// CurrentSession returns the stored session, or nil when signed out.
func (c *Client) CurrentSession() *domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) adoptSession(payload *sessionPayload) (*domain.Session, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	session := &domain.Session{
		UserID:      payload.User.ID,
		Email:       payload.User.Email,
		AccessToken: payload.AccessToken,
		ExpiresAt:   time.Unix(payload.ExpiresAt, 0),
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return session, nil
}

// do issues one request and decodes the response into out (when non-nil).
// Transport failures are returned as-is so the classifier can recognize
// them; HTTP-level failures become StatusErrors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if session := c.CurrentSession(); session != nil {
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return normalizeError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return notify.NewAppError(notify.KindSchema, "response body is not valid JSON", err)
		}
	}
	return nil
}

// normalizeError maps a failed response onto the one internal error shape
// classification understands. The envelope's own status wins when present;
// the HTTP status is the fallback.
func normalizeError(httpStatus int, body []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	status := envelope.Status
	if status == 0 {
		status = httpStatus
	}
	return &notify.StatusError{Status: status, Message: envelope.Message}
}

func (c *Client) record(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.BackendCallsTotal.WithLabelValues(operation, outcome).Inc()
}
