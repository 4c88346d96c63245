package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/google/uuid"
)

// ErrNeedsClarification stops ingestion when no usable amount was found.
// Nothing is persisted; the user has to be asked for the amount.
var ErrNeedsClarification = errors.New("expense needs clarification: no amount detected")

// FetchImageStep loads image bytes from GCS when only a gs:// URI was given.
type FetchImageStep struct {
	Storage StorageService
}

func (s *FetchImageStep) Execute(ctx context.Context, state *IngestionState) error {
	if state.Kind != domain.SourceImage || len(state.Image) > 0 {
		return nil
	}
	if state.ImageURI == "" {
		return fmt.Errorf("FetchImageStep: image source without bytes or URI")
	}
	if s.Storage == nil {
		return fmt.Errorf("FetchImageStep: no storage configured for %s", state.ImageURI)
	}

	data, err := s.Storage.FetchFromGCS(ctx, state.ImageURI)
	if err != nil {
		return fmt.Errorf("FetchImageStep: fetching %s: %w", state.ImageURI, err)
	}
	state.Image = data
	return nil
}

// ExtractStep runs the extraction adapter under a deadline. An expired
// deadline counts as extraction unavailable.
type ExtractStep struct {
	Extractor *Extractor
	Timeout   time.Duration
}

func (s *ExtractStep) Execute(ctx context.Context, state *IngestionState) error {
	if s.Extractor == nil {
		return fmt.Errorf("ExtractStep: no extractor: %w", ErrExtractionUnavailable)
	}

	callCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var (
		ext Extraction
		err error
	)
	switch state.Kind {
	case domain.SourceImage:
		ext, err = s.Extractor.ExtractImage(callCtx, state.Image, state.MIMEType)
	default:
		ext, err = s.Extractor.ExtractText(callCtx, state.Text)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrExtractionUnavailable) {
			err = fmt.Errorf("%w: %w", ErrExtractionUnavailable, err)
		}
		return fmt.Errorf("ExtractStep: %w", err)
	}

	state.Extraction = ext
	return nil
}

// CanonicalizeStep finalizes the extracted draft.
type CanonicalizeStep struct{}

func (s *CanonicalizeStep) Execute(ctx context.Context, state *IngestionState) error {
	state.Draft = Canonicalize(state.Extraction.Draft, state.RawInput(), state.Kind, state.Now)
	return nil
}

// ClarificationGateStep stops the pipeline before anything is stored when the
// draft has no usable amount.
type ClarificationGateStep struct{}

func (s *ClarificationGateStep) Execute(ctx context.Context, state *IngestionState) error {
	if state.Draft.NeedsClarification() {
		log := logger.FromContext(ctx)
		log.Info().
			Int64("telegram_id", state.OwnerID).
			Str("source_kind", string(state.Kind)).
			Msg("no amount detected, asking for clarification")
		return ErrNeedsClarification
	}
	return nil
}

// ArchiveImageStep keeps a copy of receipt images. Failures are logged and
// the record is stored without an image URI.
type ArchiveImageStep struct {
	Archive ImageArchive
}

func (s *ArchiveImageStep) Execute(ctx context.Context, state *IngestionState) error {
	if state.Kind != domain.SourceImage || s.Archive == nil || state.ImageURI != "" {
		return nil
	}

	uri, err := s.Archive.ArchiveReceipt(ctx, state.OwnerID, state.Image, state.MIMEType)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Int64("telegram_id", state.OwnerID).Msg("receipt archive failed")
		return nil
	}
	state.ImageURI = uri
	return nil
}

// PersistStep builds the expense record and inserts it.
type PersistStep struct {
	Repo ExpenseRepository
}

func (s *PersistStep) Execute(ctx context.Context, state *IngestionState) error {
	if s.Repo == nil {
		return fmt.Errorf("PersistStep: no expense repository configured")
	}
	if state.Draft.NeedsClarification() {
		return ErrNeedsClarification
	}

	record := &domain.ExpenseRecord{
		ID:            uuid.NewString(),
		OwnerID:       state.OwnerID,
		Amount:        *state.Draft.Amount,
		Description:   state.Draft.Description,
		Category:      state.Draft.Category,
		Date:          state.Draft.Date,
		Merchant:      state.Draft.Merchant,
		RawText:       state.Draft.RawText,
		SourceKind:    state.Kind,
		ImageURI:      state.ImageURI,
		CreatedAt:     state.Now,
		ProcessedJSON: processedJSON(state),
	}

	if err := s.Repo.InsertExpense(ctx, record); err != nil {
		return fmt.Errorf("PersistStep: inserting expense: %w", err)
	}

	state.Record = record
	log := logger.FromContext(ctx)
	log.Info().
		Str("expense_id", record.ID).
		Int64("telegram_id", record.OwnerID).
		Float64("amount", record.Amount).
		Str("category", string(record.Category)).
		Msg("expense recorded")
	return nil
}

// processedJSON serializes what the record was built from: the coerced model
// object when there is one, otherwise the heuristic guess.
func processedJSON(state *IngestionState) string {
	var v interface{}
	if o := state.Extraction.Outcome; o != nil && o.Coerced {
		v = o.Object
	} else {
		d := state.Extraction.Draft
		v = map[string]interface{}{
			"amount":      d.Amount,
			"description": d.Description,
			"category":    d.Category,
			"merchant":    d.Merchant,
			"heuristic":   true,
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// AuditModelOutputStep stores the raw model reply next to the record.
// Failures are logged and do not fail ingestion.
type AuditModelOutputStep struct {
	Repo ModelOutputRepository
}

func (s *AuditModelOutputStep) Execute(ctx context.Context, state *IngestionState) error {
	outcome := state.Extraction.Outcome
	if s.Repo == nil || outcome == nil || state.Record == nil {
		return nil
	}

	if err := s.Repo.InsertModelOutput(ctx, state.Record.ID, state.OwnerID, outcome); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("expense_id", state.Record.ID).Msg("storing model output failed")
	}
	return nil
}
