package remote

// BuildInvoicePrompt returns the extraction prompt sent with the document
// content. The response contract matches the schema in schema.go.
func BuildInvoicePrompt(content string) string {
	return `You are an invoice data extraction assistant. Analyze the following invoice document (Spanish invoices are common but not guaranteed) and extract its data.

IMPORTANT INSTRUCTIONS:
- Extract EVERY line item. Do not skip, summarize, or merge items.
- Normalize all dates to YYYY-MM-DD format.
- All monetary amounts must be plain numbers with a dot as decimal separator and at most two decimals. Never use thousands separators.
- Spanish tax identifiers (CIF/NIF/NIE) must be uppercased with no separators.
- If a field is not present in the document, use null.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, matching this structure:
{
  "invoice_number": "",
  "invoice_date": "",
  "due_date": null,
  "supplier": {
    "name": "", "tax_id": null, "address": null,
    "postal_code": null, "city": null, "email": null, "phone": null
  },
  "client": {
    "name": "", "tax_id": null, "address": null,
    "postal_code": null, "city": null, "email": null, "phone": null
  },
  "line_items": [
    {"description": "", "quantity": 1, "unit_price": 0, "line_total": 0, "tax_rate": null}
  ],
  "subtotal": 0,
  "tax_amount": 0,
  "total": 0,
  "currency": "EUR"
}

DOCUMENT CONTENT:
` + content
}
