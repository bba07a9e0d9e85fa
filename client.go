package facturio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Client talks to the invoice platform API.
type Client struct {
	baseURL string
	tokens  TokenSource
	rc      *resty.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets the credential provider attached to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.rc.SetTimeout(d)
	}
}

// WithRestyClient sets a custom resty client.
func WithRestyClient(rc *resty.Client) Option {
	return func(c *Client) {
		c.rc = rc
	}
}

// NewClient creates a new API client.
// baseURL is the platform URL (e.g., "http://localhost:8000").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		rc:      resty.New().SetTimeout(30 * time.Second),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do performs an HTTP request and decodes the JSON response. body, when
// non-nil, is sent as JSON. Transport failures come back as KindNetwork,
// non-2xx responses as KindServer, and undecodable bodies as KindProtocol.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result interface{}) error {
	req, err := c.newRequest(ctx)
	if err != nil {
		return err
	}
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}

	resp, err := req.Execute(method, c.baseURL+path)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}

	return c.decode(resp, result)
}

// newRequest builds a request with credentials and tracing headers attached.
func (c *Client) newRequest(ctx context.Context) (*resty.Request, error) {
	req := c.rc.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) {
				return nil, apiErr
			}
			return nil, &Error{Kind: KindValidation, Message: fmt.Sprintf("resolve credentials: %v", err)}
		}
		req.SetHeader("Authorization", "Bearer "+token)
	}

	return req, nil
}

// decode checks the response status and unmarshals the body into result.
func (c *Client) decode(resp *resty.Response, result interface{}) error {
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return serverError(resp)
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body(), result); err != nil {
			return &Error{
				Kind:    KindProtocol,
				Status:  resp.StatusCode(),
				Message: fmt.Sprintf("decode response: %v", err),
			}
		}
	}

	return nil
}

// serverError turns a non-2xx response into a structured error. The backend
// sends either {code, message, details} or FastAPI's {detail}; when neither
// decodes, the raw body becomes the message and the code falls back to
// "http/<status>".
func serverError(resp *resty.Response) *Error {
	e := &Error{
		Kind:   KindServer,
		Status: resp.StatusCode(),
		Code:   "http/" + strconv.Itoa(resp.StatusCode()),
	}

	var structured struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(resp.Body(), &structured); err == nil && structured.Message != "" {
		if structured.Code != "" {
			e.Code = structured.Code
		}
		e.Message = structured.Message
		e.Details = structured.Details
		return e
	}

	var fastapi struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body(), &fastapi); err == nil && fastapi.Detail != "" {
		e.Message = fastapi.Detail
		return e
	}

	e.Message = string(resp.Body())
	return e
}
