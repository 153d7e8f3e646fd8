// Package docsource is the HTTP client for the document-parsing backend,
// which turns uploaded files into text, markdown and tables.
package docsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/port"
)

// Client implements port.DocumentSource against the parsing backend's
// multipart /parse endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a document source client from the docsource config
// section.
func NewClient(cfg *config.DocSourceConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Parse(ctx context.Context, input port.ParseInput) (*domain.DocumentContent, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, input.FileName))
	header.Set("Content-Type", input.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := io.Copy(part, input.Body); err != nil {
		return nil, fmt.Errorf("writing file body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling document source: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document source error (status %d): %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	var doc domain.DocumentContent
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("decoding parsed document: %w", err)
	}
	return &doc, nil
}

// Ping checks that the parsing backend answers its health endpoint. Used by
// the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling document source: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("document source unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
