package schemaclient

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

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// HTTPConfig configures the HTTP schema client.
type HTTPConfig struct {
	BaseURL string
	Token   string
	// Timeout bounds each request. Zero leaves requests unbounded apart from
	// context cancellation.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient talks to the project schema and upload endpoints.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ builder.SchemaClient = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the remote project API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("schemaclient: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("schemaclient: parse base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  httpClient,
	}, nil
}

// FetchSchema returns the raw stored schema for the project.
func (c *HTTPClient) FetchSchema(ctx context.Context, projectID string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "schema"), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PatchSchema stores the document and the content filenames to delete.
func (c *HTTPClient) PatchSchema(ctx context.Context, projectID string, req builder.PatchSchemaRequest) error {
	if req.DelContent == nil {
		req.DelContent = []string{}
	}
	return c.do(ctx, http.MethodPatch, projectPath(projectID, "schema"), req, nil)
}

// RequestUploadURLs allocates one destination per item in a single call.
func (c *HTTPClient) RequestUploadURLs(ctx context.Context, projectID string, items []builder.UploadItem) ([]builder.UploadDestination, error) {
	var resp uploadURLsResponse
	if err := c.do(ctx, http.MethodPost, projectPath(projectID, "upload-urls"), uploadURLsRequest{Items: items}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Upload PUTs the file bytes to the destination's upload URL. Relative URLs
// resolve against the base URL.
func (c *HTTPClient) Upload(ctx context.Context, dest builder.UploadDestination, file *builder.LocalFile) error {
	if file == nil {
		return fmt.Errorf("schemaclient: upload %s: no file", dest.Filename)
	}
	target, err := c.resolve(dest.UploadURL)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(file.Data))
	if err != nil {
		return fmt.Errorf("schemaclient: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", file.MimeType())
	req.ContentLength = int64(len(file.Data))
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("schemaclient: upload %s: %w", dest.Filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return remoteError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *HTTPClient) resolve(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("schemaclient: empty upload url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("schemaclient: parse upload url: %w", err)
	}
	if u.IsAbs() {
		return raw, nil
	}
	return c.baseURL + "/" + strings.TrimLeft(raw, "/"), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("schemaclient: encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("schemaclient: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("schemaclient: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return remoteError(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("schemaclient: decode response: %w", err)
	}
	return nil
}

func remoteError(resp *http.Response) error {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 4096))
	return &RemoteError{Status: resp.StatusCode, Body: strings.TrimSpace(buf.String())}
}

// RemoteError reports a non-2xx response.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("schemaclient: remote error %d: %s", e.Status, e.Body)
}

func projectPath(projectID, resource string) string {
	return "/projects/" + url.PathEscape(projectID) + "/" + resource
}

type uploadURLsRequest struct {
	Items []builder.UploadItem `json:"items"`
}

type uploadURLsResponse struct {
	Items []builder.UploadDestination `json:"items"`
}
