package debtapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UploadResult is the backend's report for an accepted CSV upload.
type UploadResult struct {
	Inserted int
	Errors   []string
}

// ConflictError signals that a usage upload would overwrite data inside the
// 30-day conflict window. It maps the backend's HTTP 409 payload.
type ConflictError struct {
	Message             string `json:"message"`
	DaysSinceLastUpload int    `json:"daysSinceLastUpload"`
	LastUploadDate      string `json:"lastUploadDate"`
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "usage upload conflicts with a recent upload"
}

// Client covers the analytics backend operations the upload pipeline needs.
type Client interface {
	UploadTickets(ctx context.Context, filename string, file io.Reader) (*UploadResult, error)
	UploadUsage(ctx context.Context, filename string, file io.Reader, organization string, force bool) (*UploadResult, error)
	LastUploadDate(ctx context.Context, organization string) (*time.Time, error)
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type httpClient struct {
	baseURL string
	token   string
	client  HTTPDoer
}

// NewHTTPClient constructs a backend client. The bearer token may be empty.
func NewHTTPClient(baseURL, token string, client HTTPDoer) Client {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		client:  client,
	}
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Inserted int      `json:"inserted"`
		Errors   []string `json:"errors"`
	} `json:"data"`
	Message string `json:"message"`
}

func (c *httpClient) UploadTickets(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	fields := map[string]string{}
	return c.upload(ctx, "/tickets/upload", filename, file, fields)
}

func (c *httpClient) UploadUsage(ctx context.Context, filename string, file io.Reader, organization string, force bool) (*UploadResult, error) {
	path := "/usage/upload"
	if force {
		path += "?force=true"
	}
	fields := map[string]string{"organization": organization}
	return c.upload(ctx, path, filename, file, fields)
}

func (c *httpClient) upload(ctx context.Context, path, filename string, file io.Reader, fields map[string]string) (*UploadResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart file field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload body: %w", err)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write multipart field %q: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.applyAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		conflict := &ConflictError{}
		if err := json.NewDecoder(resp.Body).Decode(conflict); err != nil {
			return nil, fmt.Errorf("decode conflict response: %w", err)
		}
		return nil, conflict
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if !decoded.Success {
		message := strings.TrimSpace(decoded.Message)
		if message == "" {
			message = "upload rejected by backend"
		}
		return nil, fmt.Errorf("upload failed: %s", message)
	}

	result := &UploadResult{
		Inserted: decoded.Data.Inserted,
		Errors:   decoded.Data.Errors,
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	return result, nil
}

func (c *httpClient) LastUploadDate(ctx context.Context, organization string) (*time.Time, error) {
	endpoint := c.baseURL + "/analytics/last-upload-date?organization=" + url.QueryEscape(organization)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build last-upload-date request: %w", err)
	}
	c.applyAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send last-upload-date request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	var decoded struct {
		Usage *string `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode last-upload-date response: %w", err)
	}
	if decoded.Usage == nil || strings.TrimSpace(*decoded.Usage) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*decoded.Usage))
	if err != nil {
		return nil, fmt.Errorf("parse last upload date %q: %w", *decoded.Usage, err)
	}
	return &parsed, nil
}

func (c *httpClient) applyAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	message := strings.TrimSpace(string(body))
	if message == "" {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}
	return fmt.Errorf("backend returned %d: %s", resp.StatusCode, message)
}
