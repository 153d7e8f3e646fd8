package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"facturo/internal/domain"
	"facturo/internal/export"
	"facturo/internal/service"
)

// ExportHandler handles result export endpoints.
type ExportHandler struct {
	invoiceService service.InvoiceService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(invoiceService service.InvoiceService) *ExportHandler {
	return &ExportHandler{invoiceService: invoiceService}
}

// exportRequest is the body of POST /api/v1/export.
type exportRequest struct {
	Format     string   `json:"format" binding:"required"`
	InvoiceIDs []string `json:"invoice_ids" binding:"required,min=1"`
}

// Export handles POST /api/v1/export. It collects the finished records for
// the requested jobs and streams them as a downloadable file.
func (h *ExportHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "format and invoice_ids are required")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.InvoiceIDs))
	for _, raw := range req.InvoiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID: "+raw)
			return
		}
		ids = append(ids, id)
	}

	records, err := h.invoiceService.Results(c.Request.Context(), ids)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	var contentType string
	switch req.Format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = export.WriteCSV(&buf, records)
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteXLSX(&buf, records)
	case "json":
		contentType = "application/json; charset=utf-8"
		err = export.WriteJSON(&buf, records)
	default:
		HandleError(c, domain.ErrInvalidExportFormat)
		return
	}
	if err != nil {
		HandleError(c, fmt.Errorf("building export: %w", err))
		return
	}

	filename := fmt.Sprintf("invoices_%s.%s", time.Now().UTC().Format("2006-01-02"), req.Format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
