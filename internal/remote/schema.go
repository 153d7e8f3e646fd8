package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildInvoiceJSONSchema returns the JSON-Schema the remote response must
// satisfy, as a generic map. It is compiled once at client construction.
func BuildInvoiceJSONSchema() map[string]any {
	companyProp := map[string]any{
		"type": []string{"object", "null"},
		"properties": map[string]any{
			"name":        map[string]any{"type": []string{"string", "null"}},
			"tax_id":      map[string]any{"type": []string{"string", "null"}},
			"address":     map[string]any{"type": []string{"string", "null"}},
			"postal_code": map[string]any{"type": []string{"string", "null"}},
			"city":        map[string]any{"type": []string{"string", "null"}},
			"email":       map[string]any{"type": []string{"string", "null"}},
			"phone":       map[string]any{"type": []string{"string", "null"}},
		},
	}
	amountProp := map[string]any{"type": []string{"number", "null"}}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoice_number": map[string]any{"type": []string{"string", "null"}},
			"invoice_date":   map[string]any{"type": []string{"string", "null"}},
			"due_date":       map[string]any{"type": []string{"string", "null"}},
			"supplier":       companyProp,
			"client":         companyProp,
			"line_items": map[string]any{
				"type": []string{"array", "null"},
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": []string{"string", "null"}},
						"quantity":    amountProp,
						"unit_price":  amountProp,
						"line_total":  amountProp,
						"tax_rate":    amountProp,
					},
				},
			},
			"subtotal":   amountProp,
			"tax_amount": amountProp,
			"total":      amountProp,
			"currency":   map[string]any{"type": []string{"string", "null"}},
		},
		"required": []string{"supplier", "client", "total"},
	}
}

// CompileInvoiceSchema compiles the response schema for reuse across calls.
func CompileInvoiceSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(BuildInvoiceJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("invoice.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateAgainstSchema checks raw against the compiled response schema.
// Violations are terminal: the same request would fail the same way.
func ValidateAgainstSchema(schema *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &MalformedResponseError{Reason: fmt.Sprintf("decode: %v", err), Raw: truncate(string(raw), 500)}
	}
	if err := schema.Validate(v); err != nil {
		return &MalformedResponseError{Reason: fmt.Sprintf("schema violation: %v", err), Raw: truncate(string(raw), 500)}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
