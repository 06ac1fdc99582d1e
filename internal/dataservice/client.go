package dataservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/starford/rolodex/internal/apperr"
	"github.com/starford/rolodex/internal/models"
)

const maxBodyBytes = 10 << 20 // 10 MB

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables throttling
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements Service over HTTP.
type Client struct {
	base    *url.URL
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ Service = (*Client)(nil)

// NewClient validates the base URL and builds a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("dataservice: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("dataservice: unsupported scheme %q", base.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{base: base, token: opts.Token, http: hc, logger: logger}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return c, nil
}

// List handles GET /contacts.
func (c *Client) List(ctx context.Context) ([]models.Contact, error) {
	const op = "list contacts"
	body, err := c.do(ctx, op, http.MethodGet, "/contacts", nil)
	if err != nil {
		return nil, err
	}
	contacts, err := DecodeRecords(body)
	if err != nil {
		return nil, apperr.Transport(op, fmt.Errorf("decode body: %w", err))
	}
	return contacts, nil
}

// Create handles POST /contacts.
func (c *Client) Create(ctx context.Context, p Payload) error {
	p.ID = ""
	_, err := c.do(ctx, "create contact", http.MethodPost, "/contacts", p)
	return err
}

// Update handles PUT /contacts/{id}.
func (c *Client) Update(ctx context.Context, id models.ContactID, p Payload) error {
	p.ID = id
	_, err := c.do(ctx, "update contact", http.MethodPut, contactPath(id), p)
	return err
}

// Delete handles DELETE /contacts/{id}.
func (c *Client) Delete(ctx context.Context, id models.ContactID) error {
	_, err := c.do(ctx, "delete contact", http.MethodDelete, contactPath(id), nil)
	return err
}

func contactPath(id models.ContactID) string {
	return "/contacts/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.Transport(op, err)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reqBody)
	if err != nil {
		return nil, apperr.Transport(op, err)
	}
	reqID := uuid.New().String()
	req.Header.Set("X-Request-Id", reqID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("dataservice: request failed",
			slog.String("op", op),
			slog.String("request_id", reqID),
			slog.String("error", err.Error()))
		return nil, apperr.Transport(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Transport(op, fmt.Errorf("read body: %w", err))
	}

	c.logger.Debug("dataservice: request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", reqID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)))

	if err := apperr.FromStatus(op, resp.StatusCode, errorMessage(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// errorMessage pulls {"error": "..."} out of a failure body, falling back to
// the trimmed raw text.
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
