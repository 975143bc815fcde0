// Package client talks to the public API of an instance.
package client

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

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
	"github.com/dsx-project/dsx/pkg/telemetry"
)

const (
	defaultRoutingPrefix = "/users"
	defaultSocketPath    = "/socket"
	defaultTimeout       = 30 * time.Second
	defaultRetryMax      = 3
)

type OptionFn func(*Client)

// WithRoutingPrefix sets the prefix the CRUD routes are served under.
func WithRoutingPrefix(prefix string) OptionFn {
	return func(c *Client) {
		c.prefix = "/" + strings.Trim(prefix, "/")
	}
}

// WithSocketPath sets the path the websocket endpoint is served on.
func WithSocketPath(path string) OptionFn {
	return func(c *Client) {
		c.socketPath = "/" + strings.TrimLeft(path, "/")
	}
}

// WithRetryMax sets how many times a request failing on a connection error
// or a 5xx status is retried.
func WithRetryMax(n int) OptionFn {
	return func(c *Client) {
		c.http.RetryMax = n
	}
}

// WithTimeout bounds every single attempt.
func WithTimeout(d time.Duration) OptionFn {
	return func(c *Client) {
		c.http.HTTPClient.Timeout = d
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) OptionFn {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// Client is a utility for interacting with the CRUD and agent routes of an
// instance.
type Client struct {
	BaseURI    *url.URL
	prefix     string
	socketPath string
	headers    map[string]string
	http       *retryablehttp.Client
}

// New returns a client for the instance at address, e.g.
// "http://127.0.0.1:16040".
func New(address string, optFns ...OptionFn) (*Client, error) {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	baseURI, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("invalid api address %q: %w", address, err)
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = defaultRetryMax
	httpClient.RetryWaitMin = 100 * time.Millisecond
	httpClient.RetryWaitMax = 2 * time.Second
	httpClient.HTTPClient.Timeout = defaultTimeout
	httpClient.Logger = zerologAdapter{}
	// hand the last response back so API errors can be decoded
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		BaseURI:    baseURI,
		prefix:     defaultRoutingPrefix,
		socketPath: defaultSocketPath,
		headers:    map[string]string{},
		http:       httpClient,
	}
	for _, opt := range optFns {
		opt(c)
	}
	return c, nil
}

// SocketURL returns the websocket address of the instance.
func (c *Client) SocketURL() string {
	u := *c.BaseURI
	u.Scheme = "ws"
	if c.BaseURI.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path = c.socketPath
	return u.String()
}

func (c *Client) Create(ctx context.Context, doc models.Document) (models.Document, error) {
	var res models.Document
	err := c.do(ctx, http.MethodPost, c.route("create"), doc, &res)
	return res, err
}

func (c *Client) ReadAll(ctx context.Context) ([]models.Document, error) {
	var res []models.Document
	err := c.do(ctx, http.MethodGet, c.route("readall"), nil, &res)
	return res, err
}

// Read returns the document at key. A missing document yields an error for
// which apimodels.IsNotFound holds.
func (c *Client) Read(ctx context.Context, key string) (models.Document, error) {
	var res models.Document
	err := c.do(ctx, http.MethodGet, c.route("read", key), nil, &res)
	return res, err
}

// Update merges doc into the stored document and returns the result, or nil
// when no document has that key.
func (c *Client) Update(ctx context.Context, doc models.Document) (*models.Document, error) {
	var res *models.Document
	err := c.do(ctx, http.MethodPost, c.route("update"), doc, &res)
	return res, err
}

func (c *Client) Delete(ctx context.Context, key string) error {
	var res string
	return c.do(ctx, http.MethodDelete, c.route("delete", key), nil, &res)
}

func (c *Client) DeleteAll(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, c.route("deleteall"), nil, nil)
}

// Alive is used to check if the agent is alive.
func (c *Client) Alive(ctx context.Context) (*apimodels.IsAliveResponse, error) {
	var res apimodels.IsAliveResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/agent/alive", nil, &res)
	return &res, err
}

// Version is used to get the agent version.
func (c *Client) Version(ctx context.Context) (*apimodels.GetVersionResponse, error) {
	var res apimodels.GetVersionResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/agent/version", nil, &res)
	return &res, err
}

func (c *Client) Instance(ctx context.Context) (*apimodels.GetInstanceResponse, error) {
	var res apimodels.GetInstanceResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/agent/instance", nil, &res)
	return &res, err
}

func (c *Client) route(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.prefix + "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, method, path string, reqData, resData interface{}) error {
	ctx, span := telemetry.NewSpan(ctx, telemetry.GetTracer(), "pkg/publicapi/client.Client.Do")
	defer span.End()

	var body io.Reader
	if reqData != nil {
		raw, err := json.Marshal(reqData)
		if err != nil {
			return fmt.Errorf("publicapi: error encoding request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	addr := c.BaseURI.JoinPath(path).String()
	req, err := retryablehttp.NewRequestWithContext(ctx, method, addr, body)
	if err != nil {
		return fmt.Errorf("publicapi: error creating %s request: %w", method, err)
	}
	if reqData != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for header, value := range c.headers {
		req.Header.Set(header, value)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("publicapi: %s %s: %w", method, path, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return apimodels.GenerateAPIErrorFromHTTPResponse(res)
	}
	defer func() { _ = res.Body.Close() }()

	if resData == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(resData); err != nil && err != io.EOF {
		return fmt.Errorf("publicapi: error decoding response body: %w", err)
	}
	return nil
}

// zerologAdapter routes retryablehttp logs to zerolog.
type zerologAdapter struct{}

func (zerologAdapter) Error(msg string, keysAndValues ...interface{}) {
	log.Error().Fields(keysAndValues).Msg(msg)
}

func (zerologAdapter) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (zerologAdapter) Debug(msg string, keysAndValues ...interface{}) {
	log.Trace().Fields(keysAndValues).Msg(msg)
}

func (zerologAdapter) Warn(msg string, keysAndValues ...interface{}) {
	log.Warn().Fields(keysAndValues).Msg(msg)
}

var _ retryablehttp.LeveledLogger = zerologAdapter{}
