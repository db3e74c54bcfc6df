// Package httpclient is the single request pipeline every API call goes
// through. It attaches credentials, routes matching requests to the mock
// layer and unwraps response envelopes.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/adapter/response"
	"github.com/xiaot623/gogo/chatclient/internal/auth"
	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/mock"
	"github.com/xiaot623/gogo/chatclient/internal/policy"
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	APIPrefix string
	Timeout   time.Duration

	Credentials auth.CredentialSource

	// Router enables the mock layer when set.
	Router *mock.Router
	Policy *policy.Engine
	Env    string

	Notifier Notifier
	Logger   *zap.Logger

	// Transport is the network transport; defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Request describes one API call. Path is relative to the API prefix.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header

	// Transform reshapes the response body before it is unwrapped.
	Transform response.Transform
}

// Response is a raw API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is the HTTP client wrapper.
type Client struct {
	baseURL   string
	apiPrefix string

	api    *http.Client
	raw    *http.Client
	stream *http.Client

	notifier Notifier
	logger   *zap.Logger
}

// New creates a client. The data pipeline goes through the mock layer when
// opts.Router is set; the raw and streaming pipelines never do.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var apiTransport http.RoundTripper = base
	if opts.Router != nil {
		apiTransport = &mockTransport{
			router: opts.Router,
			policy: opts.Policy,
			env:    opts.Env,
			logger: logger,
			next:   base,
		}
	}
	rawTransport := &authTransport{credentials: opts.Credentials, next: base}

	return &Client{
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		apiPrefix: strings.TrimSuffix(opts.APIPrefix, "/"),
		api: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &authTransport{credentials: opts.Credentials, next: apiTransport},
		},
		raw: &http.Client{
			Timeout:   opts.Timeout,
			Transport: rawTransport,
		},
		// Streams stay open as long as the server writes.
		stream:   &http.Client{Transport: rawTransport},
		notifier: notifier,
		logger:   logger,
	}
}

// URL builds the absolute URL for a path relative to the API prefix.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + c.apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do performs req and decodes the data field of a successful envelope
// into out. out may be nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	op := opName(req)
	body, err := c.roundTrip(ctx, c.api, req, "application/json")
	if err != nil {
		return c.fail(ctx, op, err)
	}

	if req.Transform != nil {
		body = req.Transform(body)
	}

	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return c.fail(ctx, op, fmt.Errorf("%s: failed to decode envelope: %w", op, err))
	}
	if !env.OK() {
		return c.fail(ctx, op, &domain.EnvelopeError{Code: env.Code, Msg: env.Msg})
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return c.fail(ctx, op, fmt.Errorf("%s: failed to decode data: %w", op, err))
		}
	}
	return nil
}

// DoRaw performs req without the mock layer and returns the response
// untouched. Only transport failures and non-2xx statuses are errors.
func (c *Client) DoRaw(ctx context.Context, req Request) (*Response, error) {
	op := opName(req)
	httpReq, err := c.newRequest(ctx, req, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.raw.Do(httpReq)
	if err != nil {
		return nil, c.fail(ctx, op, &domain.TransportError{Op: op, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, op, &domain.TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(ctx, op, &domain.TransportError{Op: op, StatusCode: resp.StatusCode})
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// OpenStream performs req and returns the live response body of an event
// stream. The caller must close it.
func (c *Client) OpenStream(ctx context.Context, req Request) (io.ReadCloser, error) {
	op := opName(req)
	httpReq, err := c.newRequest(ctx, req, "application/json")
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		return nil, c.fail(ctx, op, &domain.TransportError{Op: op, Err: err})
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, c.fail(ctx, op, &domain.TransportError{Op: op, StatusCode: resp.StatusCode})
	}
	return resp.Body, nil
}

func (c *Client) roundTrip(ctx context.Context, hc *http.Client, req Request, contentType string) ([]byte, error) {
	op := opName(req)
	httpReq, err := c.newRequest(ctx, req, contentType)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("api request", zap.String("op", op))
	resp, err := hc.Do(httpReq)
	if err != nil {
		// Fixture failures surface as they are.
		var loadErr *domain.FixtureLoadError
		if errors.As(err, &loadErr) {
			return nil, loadErr
		}
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.TransportError{Op: op, StatusCode: resp.StatusCode}
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, req Request, contentType string) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.URL(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

// fail reports err to the notifier unless the caller gave up.
func (c *Client) fail(ctx context.Context, op string, err error) error {
	if ctx.Err() == nil {
		c.notifier.Notify(op, err)
	}
	return err
}

func opName(req Request) string {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	return method + " " + req.Path
}
