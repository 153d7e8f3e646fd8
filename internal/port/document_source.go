package port

import (
	"context"
	"io"

	"facturo/internal/domain"
)

// ParseInput carries an uploaded file to the document-parsing backend.
type ParseInput struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// DocumentSource abstracts the backend that turns an uploaded file into
// structured text, markdown and tables.
type DocumentSource interface {
	Parse(ctx context.Context, input ParseInput) (*domain.DocumentContent, error)
}
