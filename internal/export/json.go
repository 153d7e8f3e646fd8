package export

import (
	"encoding/json"
	"io"

	"facturo/internal/domain"
)

// WriteJSON renders records as an indented JSON array.
func WriteJSON(w io.Writer, records []domain.InvoiceRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
