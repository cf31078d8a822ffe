package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 10 * time.Second

// Client talks to a hosted Supabase-compatible service: GoTrue under
// /auth/v1 and PostgREST under /rest/v1.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New builds a backend client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if opts.APIKey == "" {
		return nil, errors.New("backend api key is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{baseURL: base, apiKey: opts.APIKey, timeout: timeout}, nil
}

type request struct {
	method  string
	path    string
	query   url.Values
	token   string
	headers map[string]string
	body    any
}

// do executes one request and returns the raw status and body. Non-2xx
// statuses are converted to *APIError.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	uri := c.baseURL + r.path
	if len(r.query) > 0 {
		uri += "?" + r.query.Encode()
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(r.method)
	req.SetRequestURI(uri)

	bearer := r.token
	if bearer == "" {
		bearer = c.apiKey
	}
	a.Set("apikey", c.apiKey)
	a.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	for k, v := range r.headers {
		a.Set(k, v)
	}
	if r.body != nil {
		a.JSON(r.body)
	}
	a.Timeout(timeout)

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, fmt.Errorf("backend %s %s: %w", r.method, r.path, err)
	}

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("backend %s %s: %w", r.method, r.path, errors.Join(errs...))
	}
	if status < 200 || status > 299 {
		return nil, newAPIError(status, body)
	}
	return body, nil
}

func decode(body []byte, dest any) error {
	if dest == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}
