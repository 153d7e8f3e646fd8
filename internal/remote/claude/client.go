// Package claude implements the remote extraction backend on the Anthropic
// Messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/remote"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Client implements port.RemoteExtractor using the Anthropic Messages API.
type Client struct {
	apiKey          string
	model           string
	endpoint        string
	reviewThreshold float64
	schema          *jsonschema.Schema
	client          *http.Client
}

// NewClient creates a Claude-based extractor from the remote config
// section.
func NewClient(cfg *config.RemoteConfig, reviewThreshold float64) (*Client, error) {
	return newClient(cfg, reviewThreshold, apiURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint
// (for testing).
func NewClientWithEndpoint(cfg *config.RemoteConfig, reviewThreshold float64, endpoint string) (*Client, error) {
	return newClient(cfg, reviewThreshold, endpoint)
}

func newClient(cfg *config.RemoteConfig, reviewThreshold float64, endpoint string) (*Client, error) {
	schema, err := remote.CompileInvoiceSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling response schema: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:          cfg.APIKey,
		model:           model,
		endpoint:        endpoint,
		reviewThreshold: reviewThreshold,
		schema:          schema,
		client:          &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Extract(ctx context.Context, doc *domain.DocumentContent) (*domain.InvoiceRecord, error) {
	prompt := remote.BuildInvoicePrompt(documentText(doc))

	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": 8192,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &remote.TransportError{Err: fmt.Errorf("calling anthropic API: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &remote.TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := remote.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, remote.NewRateLimitError(baseErr, retryAfter)
		case resp.StatusCode >= 500:
			return nil, &remote.TransportError{Err: baseErr, Status: resp.StatusCode}
		default:
			return nil, baseErr
		}
	}

	return c.parseResponse(respBody)
}

// documentText assembles the content sent to the model: the markdown or
// plain text plus a rendering of every recognized table, so table rows
// survive even when the text layer dropped them.
func documentText(doc *domain.DocumentContent) string {
	var b bytes.Buffer
	b.WriteString(doc.Body())
	for _, tbl := range doc.Tables {
		if tbl.RawText == "" {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(tbl.RawText)
	}
	return b.String()
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (c *Client) parseResponse(body []byte) (*domain.InvoiceRecord, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &remote.MalformedResponseError{Reason: fmt.Sprintf("unmarshaling response: %v", err)}
	}

	if len(resp.Content) == 0 {
		return nil, &remote.MalformedResponseError{Reason: "empty response from API"}
	}
	if resp.StopReason == "max_tokens" {
		return nil, &remote.MalformedResponseError{Reason: "output truncated (stop_reason: max_tokens)"}
	}

	raw := []byte(remote.StripCodeFences(resp.Content[0].Text))
	if err := remote.ValidateAgainstSchema(c.schema, raw); err != nil {
		return nil, err
	}
	return remote.DecodeRecord(raw, c.reviewThreshold)
}
