package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrEmptyDocument       = errors.New("document parsing produced no content")
	ErrJobAlreadyRunning   = errors.New("job is already processing")
	ErrJobNotFinished      = errors.New("job has not finished processing")
	ErrRemoteUnavailable   = errors.New("remote extraction backend not configured")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrInvalidExportFormat = errors.New("unsupported export format")
)
