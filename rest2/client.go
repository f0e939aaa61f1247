// Package rest2 implements a client for the Request Tracker REST 2.0
// API, the JSON interface shipped with RT 5.
//
// Unlike the legacy interface, REST 2.0 authenticates every request
// (HTTP basic auth or an auth token), paginates collection endpoints
// and reports errors through HTTP status codes. Collection results
// are exposed through Pager, which fetches pages lazily and can also
// stream items over a channel.
package rest2

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/rt-tools/rt-go/auth"
	"github.com/rt-tools/rt-go/errors"
)

// Config configures a REST 2.0 client.
type Config struct {
	// BaseURL is the API root and must end in REST/2.0/, e.g.
	// https://tracker.example.com/REST/2.0/. A trailing slash is added
	// when missing.
	BaseURL string
	// Auth selects the authentication strategy, applied to every
	// request. REST 2.0 has no login round-trip.
	Auth       auth.Authenticator
	Timeout    time.Duration
	RetryCount int
	Logger     zerolog.Logger
	Debug      bool
}

// Client talks to one RT instance over REST 2.0. It is safe for
// concurrent use.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	auth       auth.Authenticator
	logger     zerolog.Logger
}

// NewClient creates a REST 2.0 client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.NewInvalidUse("base URL is required")
	}
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if !strings.HasSuffix(base, "REST/2.0/") {
		return nil, errors.NewInvalidUse("invalid REST URL, use a form of https://example.com/REST/2.0/")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	if cfg.Debug {
		httpClient.SetDebug(true)
	}

	logger := cfg.Logger
	if !cfg.Debug {
		logger = logger.Level(zerolog.InfoLevel)
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    base,
		auth:       cfg.Auth,
		logger:     logger,
	}

	// The pre-request hook sees the final *http.Request, which is what
	// the auth strategies mutate.
	httpClient.SetPreRequestHook(func(_ *resty.Client, req *http.Request) error {
		if c.auth != nil {
			c.auth.Apply(req)
		}
		return nil
	})

	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Msg("rt rest2 request")
		return classify(resp)
	})

	return c, nil
}

// classify maps HTTP failures to typed errors. Success passes through,
// including the 204 returned by deletes.
func classify(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return errors.NewAuthorization("server could not verify that you are authorized to access the requested document")
	case http.StatusForbidden:
		return errors.NewNotAllowed(string(resp.Body()))
	case http.StatusNotFound:
		return errors.NewNotFound("no such resource found")
	case http.StatusBadRequest:
		return errors.NewBadRequest(messageFromBody(resp.Body()))
	default:
		return errors.NewUnexpectedResponse(resp.StatusCode(), string(resp.Body()))
	}
}

// messageFromBody extracts the message of an RT JSON error body,
// falling back to the raw body.
func messageFromBody(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return string(body)
}

func (c *Client) get(ctx context.Context, selector string, params url.Values, out interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if params != nil {
		req.SetQueryParamsFromValues(params)
	}
	if out != nil {
		req.SetResult(out)
	}
	_, err := req.Get(selector)
	return wrap(err)
}

func (c *Client) post(ctx context.Context, selector string, body interface{}, out interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	_, err := req.Post(selector)
	return wrap(err)
}

func (c *Client) put(ctx context.Context, selector string, body interface{}, out interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if body == nil {
		body = map[string]interface{}{}
	}
	req.SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	_, err := req.Put(selector)
	return wrap(err)
}

func (c *Client) delete(ctx context.Context, selector string) error {
	_, err := c.httpClient.R().SetContext(ctx).Delete(selector)
	return wrap(err)
}

// wrap keeps typed errors as they are and labels transport failures.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var rtErr *errors.Error
	if stderrors.As(err, &rtErr) {
		return rtErr
	}
	return errors.NewConnection("request failed", err)
}
