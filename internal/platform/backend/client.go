// Package backend is the typed HTTP client for the upstream content API.
// Every endpoint answers the same JSON envelope: {"success", "message",
// "data"}. The client decodes the envelope, surfaces the server message on
// failure, and attaches the caller's bearer token when one is available.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout      = 15 * time.Second
	maxResponseBodySize = 4 << 20
)

// ErrRequestFailed indicates the server answered with a failure envelope or a
// non-success status.
var ErrRequestFailed = errors.New("backend: request failed")

// TokenSource supplies the bearer token for outgoing requests. An empty
// string sends the request unauthenticated.
type TokenSource func(ctx context.Context) string

// Envelope is the wire format shared by every backend endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ClientDeps configures the backend client.
type ClientDeps struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      TokenSource
}

// Client issues enveloped JSON requests against the backend API.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

// NewClient constructs a Client enforcing dependency validation.
func NewClient(deps ClientDeps) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("backend: invalid base url: %w", err)
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	token := deps.Token
	if token == nil {
		token = func(context.Context) string { return "" }
	}

	return &Client{baseURL: base, http: httpClient, token: token}, nil
}

// Get issues a GET request and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	payload, contentType, err := encodeJSONBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, contentType, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	payload, contentType, err := encodeJSONBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, payload, contentType, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", out)
}

// Upload posts a multipart form with a single file field plus extra fields.
func (c *Client) Upload(ctx context.Context, path, fieldName, fileName string, file io.Reader, fields map[string]string, out any) error {
	if file == nil {
		return errors.New("backend: upload file is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return fmt.Errorf("backend: build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("backend: build upload: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("backend: build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("backend: build upload: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, nil, buf.Bytes(), writer.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string, out any) error {
	if c == nil || c.http == nil {
		return ErrRequestFailed
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := strings.TrimSpace(c.token(ctx)); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("backend: read response: %w", err)
	}

	var envelope Envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
			}
			return fmt.Errorf("backend: decode response: %w", err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || !envelope.Success {
		message := strings.TrimSpace(envelope.Message)
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("%w: %s", ErrRequestFailed, message)
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("backend: decode data: %w", err)
	}
	return nil
}

func encodeJSONBody(body any) ([]byte, string, error) {
	if body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("backend: encode body: %w", err)
	}
	return payload, "application/json", nil
}
