package jira

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gojira "github.com/andygrunwald/go-jira"

	"github.com/nhle/jira-util/internal/model"
	"github.com/nhle/jira-util/internal/tracker"
)

// Client wraps a go-jira client for the Jira REST API v2.
// It authenticates with basic auth, bounds every request by the configured
// read timeout and keeps the raw body of the last failed response so that
// errors can show the server's message verbatim. It never retries.
type Client struct {
	api      *gojira.Client
	baseURL  string
	recorder *bodyRecorder
}

// NewClient creates a new Jira client. No request is made until one of the
// Adapter methods is called.
func NewClient(conn model.ConnectionConfig) (*Client, error) {
	if conn.AuthMode != "" && conn.AuthMode != model.AuthModeBasic {
		return nil, fmt.Errorf("unsupported auth mode %q", conn.AuthMode)
	}

	timeout := conn.ReadTimeout
	if timeout <= 0 {
		timeout = model.DefaultReadTimeout
	}

	transport := &gojira.BasicAuthTransport{
		Username: conn.Username,
		Password: conn.Password,
	}
	recorder := &bodyRecorder{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}

	baseURL := strings.TrimRight(conn.BaseURL, "/")
	api, err := gojira.NewClient(recorder, baseURL+"/")
	if err != nil {
		return nil, fmt.Errorf("creating jira client for %s: %w", baseURL, err)
	}

	return &Client{
		api:      api,
		baseURL:  baseURL,
		recorder: recorder,
	}, nil
}

// BaseURL returns the root URL of the Jira instance without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do builds a request for path, sends it and decodes a JSON response into
// result when result is non-nil.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	req, err := c.api.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("creating request %s %s: %w", method, path, err)
	}

	return c.call(method, path, func() (*gojira.Response, error) {
		return c.api.Do(req, result)
	})
}

// call runs fn and classifies its failure. Non-2xx responses and network
// faults become *tracker.HTTPError, anything else (e.g. an undecodable
// success body) is returned wrapped as is.
func (c *Client) call(
	method string,
	path string,
	fn func() (*gojira.Response, error),
) error {
	c.recorder.reset()

	resp, err := fn()
	if err == nil {
		return nil
	}

	if resp != nil && resp.Response != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return fmt.Errorf("decoding response from %s %s: %w", method, path, err)
		}
		return &tracker.HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       c.recorder.body(),
			Err:        err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &tracker.HTTPError{Method: method, Path: path, Err: err}
	}

	return fmt.Errorf("executing request %s %s: %w", method, path, err)
}

// bodyRecorder is the http client handed to go-jira. It buffers the body of
// non-2xx responses so the body stays readable by go-jira and by us.
type bodyRecorder struct {
	client *http.Client
	last   string
}

func (r *bodyRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	data, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("reading response body: %w", readErr)
	}

	r.last = string(data)
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

func (r *bodyRecorder) reset() {
	r.last = ""
}

func (r *bodyRecorder) body() string {
	return r.last
}
