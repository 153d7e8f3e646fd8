package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/remote"
	"facturo/internal/remote/claude"
)

func newTestClient(t *testing.T, serverURL string) *claude.Client {
	t.Helper()
	cfg := &config.RemoteConfig{
		Provider:    "claude",
		APIKey:      "test-api-key",
		Model:       "claude-sonnet-4-20250514",
		TimeoutSecs: 30,
	}
	c, err := claude.NewClientWithEndpoint(cfg, 0.7, serverURL)
	require.NoError(t, err)
	return c
}

func textResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
	}
}

const invoiceJSON = `{
  "invoice_number": "F2024-00123",
  "invoice_date": "2024-01-15",
  "supplier": {"name": "Consultora Ibérica SL", "tax_id": "B12345678"},
  "client": {"name": "Acme España SA", "tax_id": "A87654321"},
  "line_items": [{"description": "Consultoría", "quantity": 10, "unit_price": 100, "line_total": 1000}],
  "subtotal": 1000, "tax_amount": 210, "total": 1210, "currency": "EUR"
}`

func TestClient_Extract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])
		prompt := msg["content"].(string)
		assert.Contains(t, prompt, "Factura Nº: F2024-00123")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(textResponse(invoiceJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	rec, err := client.Extract(context.Background(), &domain.DocumentContent{
		Text: "Factura Nº: F2024-00123\nTOTAL: 1.210,00 €",
	})

	require.NoError(t, err)
	assert.Equal(t, "F2024-00123", rec.InvoiceNumber)
	assert.Equal(t, "Consultora Ibérica SL", rec.Supplier.Name)
	assert.Equal(t, "1210.00", rec.Total.StringFixed(2))
	assert.Equal(t, domain.MethodRemote, rec.ExtractionMethod)
	assert.Equal(t, remote.RecordConfidence, rec.ConfidenceScore)
}

func TestClient_Extract_FencedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(textResponse("```json\n" + invoiceJSON + "\n```"))
	}))
	defer server.Close()

	rec, err := newTestClient(t, server.URL).Extract(context.Background(), &domain.DocumentContent{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "F2024-00123", rec.InvoiceNumber)
}

func TestClient_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Extract(context.Background(), &domain.DocumentContent{Text: "x"})

	var te *remote.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 429, te.Status)
	assert.Equal(t, float64(17), te.RetryAfter.Seconds())
}

func TestClient_Extract_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Extract(context.Background(), &domain.DocumentContent{Text: "x"})
	assert.True(t, remote.IsTransient(err))
}

func TestClient_Extract_BadRequestIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Extract(context.Background(), &domain.DocumentContent{Text: "x"})
	require.Error(t, err)
	assert.False(t, remote.IsTransient(err))
}

func TestClient_Extract_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(textResponse(`{"supplier": "not an object", "client": null, "total": 1}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Extract(context.Background(), &domain.DocumentContent{Text: "x"})

	var malformed *remote.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.False(t, remote.IsTransient(err))
}

func TestClient_Extract_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": "{"}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Extract(context.Background(), &domain.DocumentContent{Text: "x"})

	var malformed *remote.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}
