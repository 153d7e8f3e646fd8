package domain

// ExtractionMode selects the pipeline strategy for a document.
type ExtractionMode string

const (
	// ModeHybrid runs local extraction first and escalates to the remote
	// backend only when the local result is not good enough.
	ModeHybrid ExtractionMode = "hybrid"
	// ModeLocalOnly never calls the remote backend.
	ModeLocalOnly ExtractionMode = "local_only"
	// ModeRemoteOnly always calls the remote backend, keeping the local
	// result only as a fallback when the remote call fails.
	ModeRemoteOnly ExtractionMode = "remote_only"
)

// ExtractionMethod records which engine produced a final record.
type ExtractionMethod string

const (
	MethodLocal  ExtractionMethod = "local"
	MethodRemote ExtractionMethod = "remote"
)

// ResultSource describes how an extracted value was obtained.
type ResultSource string

const (
	// SourcePattern means the value was matched directly in the document.
	SourcePattern ResultSource = "pattern"
	// SourceInference means the value was derived from other fields.
	SourceInference ResultSource = "inference"
	// SourceDefault means the value is a sentinel or assumed default.
	SourceDefault ResultSource = "default"
)

// JobStatus tracks a document through the processing pipeline.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)
