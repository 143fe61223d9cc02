package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/yildizm/ChatLens/internal/upload"
)

const (
	// AnalyzePath is the upload endpoint of the analysis service
	AnalyzePath = "/api/analyze"

	// FileField is the multipart field carrying the chat export
	FileField = "file"

	// RequestIDHeader carries the per-attempt correlation ID
	RequestIDHeader = "X-Request-ID"
)

// ClientConfig holds analysis service client settings
type ClientConfig struct {
	// BaseURL is the service address, e.g. http://localhost:8000
	BaseURL string

	// HTTPClient overrides the default client. The default has no timeout:
	// an upload is awaited until the service answers.
	HTTPClient *http.Client
}

// Client talks to the remote analysis service
type Client struct {
	baseURL *url.URL
	client  *http.Client
}

// NewClient creates a new analysis service client
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("service base URL is required")
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service base URL: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid service base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if baseURL.Host == "" {
		return nil, fmt.Errorf("invalid service base URL %q: missing host", cfg.BaseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &Client{baseURL: baseURL, client: client}, nil
}

// BaseURL returns the service address as configured
func (c *Client) BaseURL() string {
	return strings.TrimSuffix(c.baseURL.String(), "/")
}

// Analyze uploads a candidate and returns the decoded analytics.
// The call is one-shot: no retries.
func (c *Client) Analyze(ctx context.Context, candidate upload.Candidate) (*Report, error) {
	return c.analyze(ctx, candidate, uuid.New().String())
}

func (c *Client) analyze(ctx context.Context, candidate upload.Candidate, requestID string) (*Report, error) {
	body, contentType, err := buildMultipartBody(candidate)
	if err != nil {
		return nil, NewInternalError(err)
	}

	endpoint := c.baseURL.JoinPath(AnalyzePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, NewInternalError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewTransportError(c.BaseURL(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewServerError(resp.StatusCode, extractErrorMessage(resp))
	}

	return decodeSuccess(resp)
}

// HealthCheck verifies the service answers on its root route
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint := c.baseURL.JoinPath("/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return NewInternalError(fmt.Errorf("failed to create health check request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return NewTransportError(c.BaseURL(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return NewServerError(resp.StatusCode, fmt.Sprintf("health check failed with status %d", resp.StatusCode))
	}

	var health struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return NewMalformedError(resp.StatusCode, err)
	}
	if health.Status != "ok" {
		return NewServerError(resp.StatusCode, fmt.Sprintf("service reported status %q", health.Status))
	}

	return nil
}

// buildMultipartBody encodes the candidate as a single "file" part
func buildMultipartBody(candidate upload.Candidate) (io.Reader, string, error) {
	content, err := candidate.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", candidate.Name, err)
	}
	defer func() { _ = content.Close() }()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(FileField, candidate.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", candidate.Name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// extractErrorMessage derives the user message from a failure response:
// the JSON "detail" field, else the raw body text, else status code and text.
func extractErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Server error: %d %s", resp.StatusCode, statusText(resp))
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		if len(body) == 0 {
			return MsgAnalyzeFailed
		}
		return string(body)
	}

	fields, ok := parsed.(map[string]any)
	if !ok {
		return MsgAnalyzeFailed
	}

	switch detail := fields["detail"].(type) {
	case nil:
		return MsgAnalyzeFailed
	case string:
		if detail == "" {
			return MsgAnalyzeFailed
		}
		return detail
	default:
		// Validation failures carry a list of objects
		encoded, err := json.Marshal(detail)
		if err != nil {
			return MsgAnalyzeFailed
		}
		return string(encoded)
	}
}

// statusText returns the reason phrase of a response
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// envelope is the success body wrapper
type envelope struct {
	Success       any             `json:"success"`
	Data          json.RawMessage `json:"data"`
	TotalMessages any             `json:"total_messages"`
}

// decodeSuccess validates and decodes a 2xx body
func decodeSuccess(resp *http.Response) (*Report, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewMalformedError(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, NewMalformedError(resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if !truthy(env.Success) {
		return nil, NewMalformedError(resp.StatusCode, fmt.Errorf("success flag is %v", env.Success))
	}
	if !isJSONObject(env.Data) {
		return nil, NewMalformedError(resp.StatusCode, fmt.Errorf("data is not an object"))
	}

	var result Result
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, NewMalformedError(resp.StatusCode, fmt.Errorf("failed to decode data: %w", err))
	}

	report := &Report{Analytics: &result}
	if total, ok := env.TotalMessages.(float64); ok {
		report.TotalMessages = int(total)
	}

	return report, nil
}

// truthy follows loose boolean semantics for the success flag
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
