package service

import (
	"context"
	"fmt"
	"log"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/extract"
	"facturo/internal/port"
)

// Processor decides how far up the cost ladder a document has to go: the
// deterministic local engine always runs, the remote backend only when the
// local result is not good enough.
type Processor struct {
	engine *extract.Engine
	remote port.RemoteExtractor // nil in local-only deployments
	cfg    config.ExtractionConfig
}

// NewProcessor wires the local engine and the optional remote backend.
func NewProcessor(remote port.RemoteExtractor, cfg config.ExtractionConfig) *Processor {
	return &Processor{
		engine: extract.NewEngine(cfg.ConfidenceThreshold, cfg.DefaultTaxRate),
		remote: remote,
		cfg:    cfg,
	}
}

// ExtractLocal runs only the deterministic engine.
func (p *Processor) ExtractLocal(doc *domain.DocumentContent) *domain.InvoiceRecord {
	return p.engine.Extract(doc)
}

// DefaultMode returns the configured pipeline mode.
func (p *Processor) DefaultMode() domain.ExtractionMode {
	return domain.ExtractionMode(p.cfg.Mode)
}

// HasRemote reports whether a remote backend is configured.
func (p *Processor) HasRemote() bool {
	return p.remote != nil
}

// ExtractHybrid runs the local engine and escalates to the remote backend
// when the local result triggers any escalation condition. The stronger of
// the two candidate records wins; a failed remote call falls back to the
// local record, never to an error.
func (p *Processor) ExtractHybrid(ctx context.Context, doc *domain.DocumentContent, mode domain.ExtractionMode) *domain.InvoiceRecord {
	local := p.engine.Extract(doc)

	if p.remote == nil || mode == domain.ModeLocalOnly {
		return local
	}

	forced := mode == domain.ModeRemoteOnly
	reasons := p.escalationReasons(local, doc)
	if !forced && len(reasons) == 0 {
		return local
	}

	if !forced {
		log.Printf("[processor] escalating to remote backend: %v", reasons)
	}

	remoteRec, err := p.remote.Extract(ctx, doc)
	if err != nil {
		log.Printf("[processor] remote extraction failed, keeping local result: %v", err)
		return local
	}

	// Forced remote mode keeps the local record only as a failure
	// fallback; the confidence contest applies to hybrid escalation.
	if forced {
		return remoteRec
	}
	return p.choose(local, remoteRec)
}

// escalationReasons lists every condition under which the local record is
// not trusted enough to skip the remote backend.
func (p *Processor) escalationReasons(rec *domain.InvoiceRecord, doc *domain.DocumentContent) []string {
	var reasons []string
	if rec.RequiresReview {
		reasons = append(reasons, "local result flagged for review")
	}
	if rec.ConfidenceScore < p.cfg.EscalationThreshold {
		reasons = append(reasons, fmt.Sprintf("confidence %.2f below threshold %.2f", rec.ConfidenceScore, p.cfg.EscalationThreshold))
	}
	if rec.InvoiceNumber == domain.UnknownName {
		reasons = append(reasons, "invoice number not found")
	}
	if !rec.Total.IsPositive() {
		reasons = append(reasons, "no positive total")
	}
	if rec.Supplier.Unresolved() && rec.Client.Unresolved() {
		reasons = append(reasons, "neither party identified")
	}
	if len(doc.Tables) > p.cfg.MaxTables {
		reasons = append(reasons, fmt.Sprintf("document has %d tables (max %d for local)", len(doc.Tables), p.cfg.MaxTables))
	}
	return reasons
}

// choose picks between the local and remote candidate records by
// confidence. Ties go to the remote record by default since it saw the
// whole document at once.
func (p *Processor) choose(local, remote *domain.InvoiceRecord) *domain.InvoiceRecord {
	switch {
	case remote.ConfidenceScore > local.ConfidenceScore:
		return remote
	case remote.ConfidenceScore == local.ConfidenceScore && p.cfg.PreferRemoteOnTie:
		return remote
	default:
		return local
	}
}
