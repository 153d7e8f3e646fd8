package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/port"
)

// processTimeout bounds one document's trip through parsing and
// extraction, including remote retries.
const processTimeout = 5 * time.Minute

// InvoiceUploadInput is the DTO for invoice upload requests.
type InvoiceUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// InvoiceService defines the invoice pipeline contract.
type InvoiceService interface {
	Upload(ctx context.Context, input InvoiceUploadInput) (*domain.Job, error)
	StartProcessing(ctx context.Context, id uuid.UUID, mode domain.ExtractionMode) (*domain.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	ListJobs(ctx context.Context, offset, limit int) ([]domain.Job, int, error)
	Results(ctx context.Context, ids []uuid.UUID) ([]domain.InvoiceRecord, error)
	Wait()
}

type invoiceService struct {
	jobs      port.JobStore
	storage   port.ObjectStorage
	source    port.DocumentSource
	processor *Processor
	uploadCfg config.UploadConfig

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewInvoiceService creates the pipeline service. concurrency bounds how
// many documents are processed at once.
func NewInvoiceService(
	jobs port.JobStore,
	storage port.ObjectStorage,
	source port.DocumentSource,
	processor *Processor,
	uploadCfg config.UploadConfig,
	concurrency int,
) InvoiceService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &invoiceService{
		jobs:      jobs,
		storage:   storage,
		source:    source,
		processor: processor,
		uploadCfg: uploadCfg,
		sem:       make(chan struct{}, concurrency),
	}
}

func (s *invoiceService) Upload(ctx context.Context, input InvoiceUploadInput) (*domain.Job, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.uploadCfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if input.Header.Size == 0 {
		return nil, domain.ErrEmptyFile
	}

	jobID := uuid.New()
	key := fmt.Sprintf("invoices/%s/%s", jobID, input.Header.Filename)
	contentType := domain.AllowedFileTypes[fileType]

	log.Printf("invoiceService.Upload: storing %s (%s, %d bytes) as job %s",
		input.Header.Filename, contentType, input.Header.Size, jobID)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	}); err != nil {
		log.Printf("invoiceService.Upload: storage upload failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	job := &domain.Job{
		ID:          jobID,
		FileName:    input.Header.Filename,
		Status:      domain.JobStatusPending,
		Message:     "uploaded, awaiting processing",
		StorageKey:  key,
		ContentType: contentType,
		FileSize:    input.Header.Size,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	return job, nil
}

// StartProcessing marks the job as processing and dispatches it to the
// worker pool. It returns immediately; progress is tracked on the job.
func (s *invoiceService) StartProcessing(ctx context.Context, id uuid.UUID, mode domain.ExtractionMode) (*domain.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusProcessing {
		return nil, domain.ErrJobAlreadyRunning
	}
	if mode == "" {
		mode = s.processor.DefaultMode()
	}
	if mode == domain.ModeRemoteOnly && !s.processor.HasRemote() {
		return nil, domain.ErrRemoteUnavailable
	}

	job.Status = domain.JobStatusProcessing
	job.Progress = 0.05
	job.Message = "queued for processing"
	job.Result = nil
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	dispatched := *job
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.sem <- struct{}{}
		defer func() { <-s.sem }()

		// Fresh context independent of the HTTP request so in-flight
		// documents finish even when the caller disconnects.
		procCtx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()

		s.process(procCtx, &dispatched, mode)
	}()

	return job, nil
}

// process runs one document through parse, extract and (maybe) escalate,
// updating the job record at each stage.
func (s *invoiceService) process(ctx context.Context, job *domain.Job, mode domain.ExtractionMode) {
	fail := func(err error) {
		log.Printf("invoiceService.process: job %s failed: %v", job.ID, err)
		job.Status = domain.JobStatusError
		job.Message = err.Error()
		if updateErr := s.jobs.Update(ctx, job); updateErr != nil {
			log.Printf("invoiceService.process: recording failure for job %s: %v", job.ID, updateErr)
		}
	}

	body, err := s.storage.Download(ctx, job.StorageKey)
	if err != nil {
		fail(fmt.Errorf("fetching stored document: %w", err))
		return
	}
	defer func() { _ = body.Close() }()

	job.Progress = 0.2
	job.Message = "parsing document"
	_ = s.jobs.Update(ctx, job)

	doc, err := s.source.Parse(ctx, port.ParseInput{
		FileName:    job.FileName,
		ContentType: job.ContentType,
		Body:        body,
	})
	if err != nil {
		fail(fmt.Errorf("parsing document: %w", err))
		return
	}
	if doc.Empty() {
		fail(domain.ErrEmptyDocument)
		return
	}

	job.Progress = 0.6
	job.Message = "extracting fields"
	_ = s.jobs.Update(ctx, job)

	rec := s.processor.ExtractHybrid(ctx, doc, mode)

	job.Status = domain.JobStatusCompleted
	job.Progress = 1.0
	job.Message = "done"
	job.Result = rec
	job.Method = rec.ExtractionMethod
	if err := s.jobs.Update(ctx, job); err != nil {
		log.Printf("invoiceService.process: recording result for job %s: %v", job.ID, err)
	}
}

func (s *invoiceService) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return s.jobs.Get(ctx, id)
}

func (s *invoiceService) ListJobs(ctx context.Context, offset, limit int) ([]domain.Job, int, error) {
	return s.jobs.List(ctx, offset, limit)
}

// Results collects the finished records for the given jobs, in order. Jobs
// that are not completed yet yield ErrJobNotFinished.
func (s *invoiceService) Results(ctx context.Context, ids []uuid.UUID) ([]domain.InvoiceRecord, error) {
	records := make([]domain.InvoiceRecord, 0, len(ids))
	for _, id := range ids {
		job, err := s.jobs.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Status != domain.JobStatusCompleted || job.Result == nil {
			return nil, fmt.Errorf("%w: job %s is %s", domain.ErrJobNotFinished, id, job.Status)
		}
		records = append(records, *job.Result)
	}
	return records, nil
}

// Wait blocks until all dispatched documents have finished. Used during
// shutdown.
func (s *invoiceService) Wait() {
	s.wg.Wait()
}
