// the client package calls the follow API on behalf of the followcheck harness.
// There is one method per endpoint. Methods return the decoded response body, or a *ClientError describing
// what went wrong (see client/errors.go). Deciding what to print and which failures are fatal is left to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client handles communication with the follow API.
//
// A Client holds a single session: the access token set by Login is sent on every authenticated request made afterwards.
// The token is not guarded by a lock, a Client is meant to be used by one goroutine.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
}

type Option func(*Client)

// WithTimeout sets the overall timeout of each request. The default is no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTransport replaces the http transport, e.g to add request logging
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// NewClient creates a client for the API at baseURL, e.g http://localhost:8000/api
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken returns the token acquired by the last successful Login ("" before login)
func (c *Client) AccessToken() string {
	return c.accessToken
}

// Close releases idle connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// newJSONRequest creates a request for the endpoint at path. When body is not nil it is sent as JSON.
// The access token is attached when authenticated is true and the client has logged in.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, body any, authenticated bool) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, NewClientInternalError(err, fmt.Sprintf("marshaling %s %s request", method, path))
		}
		reader = bytes.NewBuffer(jsonData)
	}

	url := fmt.Sprintf("%s%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, NewClientInternalError(err, fmt.Sprintf("creating %s %s request", method, path))
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if authenticated {
		c.authorize(req)
	}

	return req, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.accessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))
	}
}

// do sends the request and decodes a successful (2xx) response into out.
// out may be nil when the response has no body of interest.
func (c *Client) do(req *http.Request, out any, while string) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return NewClientConnectionError(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return NewClientApiError(res)
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return NewClientInternalError(err, fmt.Sprintf("decoding %s response", while))
	}

	return nil
}
