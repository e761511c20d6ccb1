package api

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
)

// Client talks to the status API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// StatusError is a non-200 response.
type StatusError struct {
	Code    int
	Message string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

// NewClient creates a Client for the API at baseURL, e.g. http://host:8080.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimSuffix(baseURL, "/"), HTTP: http.DefaultClient}
}

// Status retrieves the full status.
func (c *Client) Status(ctx context.Context) (*StatusView, error) {
	var v StatusView
	return &v, c.do(ctx, http.MethodGet, "/api/status", nil, &v)
}

// Stats retrieves the counters.
func (c *Client) Stats(ctx context.Context) (*StatsView, error) {
	var v StatsView
	return &v, c.do(ctx, http.MethodGet, "/api/stats", nil, &v)
}

// ResetStats resets the status to defaults.
func (c *Client) ResetStats(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/stats", map[string]bool{"reset": true}, &okView{})
}

// Link retrieves the link telemetry.
func (c *Client) Link(ctx context.Context) (*LinkView, error) {
	var v LinkView
	return &v, c.do(ctx, http.MethodGet, "/api/link", nil, &v)
}

// LastCommand retrieves the last control command forwarded.
func (c *Client) LastCommand(ctx context.Context) (string, error) {
	var v controlView
	err := c.do(ctx, http.MethodGet, "/api/control", nil, &v)
	return v.LastCommand, err
}

// SendCommand submits a control command.
func (c *Client) SendCommand(ctx context.Context, cmd string) error {
	return c.do(ctx, http.MethodPost, "/api/control", &controlRequest{Cmd: cmd}, &okView{})
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body bytes.Buffer
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body.Write(data)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, &body)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return json.Unmarshal(data, out)
}
