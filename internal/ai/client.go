// Package ai talks to the external text-generation service.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/librescript/backend/internal/apperr"
)

const (
	DefaultLength      = 200
	DefaultTemperature = 0.7
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Response is an upstream reply relayed as-is: its status code and JSON body.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type GenerateRequest struct {
	Prompt      string  `json:"prompt"`
	Length      int     `json:"length"`
	Temperature float64 `json:"temperature"`
}

type GenerateResult struct {
	Prompt     string          `json:"prompt"`
	Response   string          `json:"response"`
	Parameters json.RawMessage `json:"parameters"`
	Timestamp  string          `json:"timestamp"`
}

func (c *Client) Status(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodGet, "/status", nil)
}

func (c *Client) Reload(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodPost, "/reload", nil)
}

// Generate asks the service for a completion. A successful reply is decoded;
// any other reply is returned in Response for the caller to relay.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, Response, error) {
	if req.Length == 0 {
		req.Length = DefaultLength
	}
	if req.Temperature == 0 {
		req.Temperature = DefaultTemperature
	}

	resp, err := c.do(ctx, http.MethodPost, "/generate", req)
	if err != nil || !resp.OK() {
		return nil, resp, err
	}

	var out GenerateResult
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, resp, apperr.Wrap(apperr.Unavailable, err, "Invalid response from the AI service")
	}
	return &out, resp, nil
}

// Ping fetches the service root.
func (c *Client) Ping(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodGet, "/", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return Response{}, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, apperr.Wrap(apperr.Unavailable, err, "AI service unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Response{}, apperr.Wrap(apperr.Unavailable, err, "AI service unreachable")
	}
	if !json.Valid(raw) {
		quoted, _ := json.Marshal(string(raw))
		raw = quoted
	}
	return Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

func (r Response) String() string {
	return fmt.Sprintf("%d %s", r.StatusCode, r.Body)
}
