package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
)

// PipelineStep represents a single step in the ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *IngestionState) error
}

// IngestionState holds the shared state across all pipeline steps.
type IngestionState struct {
	// Input
	OwnerID  int64
	Kind     domain.SourceKind
	Text     string
	Image    []byte
	MIMEType string
	ImageURI string // gs:// URI, set up front when the image is already archived
	Now      time.Time

	// Produced by the steps
	Extraction Extraction
	Draft      domain.ExpenseDraft
	Record     *domain.ExpenseRecord
}

// RawInput is the text the user supplied, empty for images.
func (s *IngestionState) RawInput() string {
	if s.Kind == domain.SourceImage {
		return ""
	}
	return s.Text
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially and stops at the first
// failure. Step errors stay inspectable with errors.Is.
func (p *Pipeline) Execute(ctx context.Context, state *IngestionState) error {
	if state.Now.IsZero() {
		state.Now = time.Now()
	}
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// IngestionDeps are the collaborators of the standard ingestion pipeline.
// Archive, Storage and ModelOutputs may be nil.
type IngestionDeps struct {
	Extractor    *Extractor
	Timeout      time.Duration
	Expenses     ExpenseRepository
	ModelOutputs ModelOutputRepository
	Archive      ImageArchive
	Storage      StorageService
}

// NewIngestionPipeline creates the standard pipeline: fetch, extract,
// canonicalize, gate, archive, persist, audit.
func NewIngestionPipeline(deps IngestionDeps) *Pipeline {
	return NewPipeline(
		&FetchImageStep{Storage: deps.Storage},
		&ExtractStep{Extractor: deps.Extractor, Timeout: deps.Timeout},
		&CanonicalizeStep{},
		&ClarificationGateStep{},
		&ArchiveImageStep{Archive: deps.Archive},
		&PersistStep{Repo: deps.Expenses},
		&AuditModelOutputStep{Repo: deps.ModelOutputs},
	)
}
