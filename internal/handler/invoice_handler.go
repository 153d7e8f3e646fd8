package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"facturo/internal/domain"
	"facturo/internal/service"
)

// InvoiceHandler handles invoice upload and processing endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Upload handles POST /api/v1/invoices/upload. The file is stored and a
// pending job is created; processing starts with a separate call or the
// process=true form field.
func (h *InvoiceHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	job, err := h.invoiceService.Upload(c.Request.Context(), service.InvoiceUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	if c.PostForm("process") == "true" {
		mode, ok := parseMode(c, c.PostForm("mode"))
		if !ok {
			return
		}
		job, err = h.invoiceService.StartProcessing(c.Request.Context(), job.ID, mode)
		if err != nil {
			HandleError(c, err)
			return
		}
	}

	RespondCreated(c, job)
}

// UploadBatch handles POST /api/v1/invoices/upload/batch. Every file in the
// form is uploaded and queued for processing; per-file failures are reported
// alongside the successes instead of aborting the batch.
func (h *InvoiceHandler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "multipart form is required")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILES", "files field is required")
		return
	}

	mode, ok := parseMode(c, c.PostForm("mode"))
	if !ok {
		return
	}

	type batchItem struct {
		FileName string      `json:"filename"`
		Job      *domain.Job `json:"job,omitempty"`
		Error    string      `json:"error,omitempty"`
	}

	items := make([]batchItem, 0, len(files))
	for _, header := range files {
		item := batchItem{FileName: header.Filename}

		job, uploadErr := h.uploadOne(c, header, mode)
		if uploadErr != nil {
			_, _, item.Error = MapDomainError(uploadErr)
		} else {
			item.Job = job
		}
		items = append(items, item)
	}

	RespondAccepted(c, gin.H{"invoices": items})
}

func (h *InvoiceHandler) uploadOne(c *gin.Context, header *multipart.FileHeader, mode domain.ExtractionMode) (*domain.Job, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	job, err := h.invoiceService.Upload(c.Request.Context(), service.InvoiceUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		return nil, err
	}
	return h.invoiceService.StartProcessing(c.Request.Context(), job.ID, mode)
}

// Process handles POST /api/v1/invoices/:id/process
func (h *InvoiceHandler) Process(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	mode, ok := parseMode(c, c.Query("mode"))
	if !ok {
		return
	}

	job, err := h.invoiceService.StartProcessing(c.Request.Context(), id, mode)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, job)
}

// Status handles GET /api/v1/invoices/:id/status
func (h *InvoiceHandler) Status(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	job, err := h.invoiceService.GetJob(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	jobs, total, err := h.invoiceService.ListJobs(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, jobs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// parseMode validates an extraction mode parameter. An empty mode is
// allowed and means the configured default.
func parseMode(c *gin.Context, raw string) (domain.ExtractionMode, bool) {
	switch mode := domain.ExtractionMode(raw); mode {
	case "", domain.ModeHybrid, domain.ModeLocalOnly, domain.ModeRemoteOnly:
		return mode, true
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_MODE", "invalid mode; allowed: hybrid, local_only, remote_only")
		return "", false
	}
}
