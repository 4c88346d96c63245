package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
)

// ErrExtractionUnavailable means the model could not be invoked at all. It is
// distinct from a reply that held no expense, which yields a draft without an
// amount instead.
var ErrExtractionUnavailable = errors.New("extraction unavailable")

// Extractor produces the best available draft for a text or image input. It
// does not retry; retry policy belongs to the caller.
type Extractor struct {
	client ModelClient
}

// NewExtractor creates an Extractor. A nil client restricts text extraction
// to the heuristic and makes image extraction unavailable.
func NewExtractor(client ModelClient) *Extractor {
	return &Extractor{client: client}
}

// ExtractText asks the model to read text and falls back to the heuristic when
// the reply cannot be coerced.
func (e *Extractor) ExtractText(ctx context.Context, text string) (Extraction, error) {
	log := logger.FromContext(ctx)

	if e.client == nil {
		return Extraction{Draft: ExtractHeuristic(text)}, nil
	}

	resp, err := e.client.GenerateText(ctx, buildTextPrompt(text))
	if err != nil {
		return Extraction{}, fmt.Errorf("ExtractText: generate content: %w: %w", ErrExtractionUnavailable, err)
	}

	outcome := &ModelOutcome{ModelName: e.client.ModelName(), RawResponse: resp}

	obj, ok := CoerceModelResponse(resp)
	if !ok {
		log.Warn().Int("response_len", len(resp)).Msg("model reply not coercible, using heuristic extraction")
		draft := ExtractHeuristic(text)
		draft.SourceKind = domain.SourceText
		return Extraction{Draft: draft, Outcome: outcome}, nil
	}

	outcome.Coerced = true
	outcome.Object = obj
	return Extraction{Draft: draftFromModelObject(obj, text, domain.SourceText), Outcome: outcome}, nil
}

// ExtractImage asks the model to read a receipt image. When the reply cannot
// be coerced the heuristic runs over whatever transcript the reply carries.
func (e *Extractor) ExtractImage(ctx context.Context, data []byte, mimeType string) (Extraction, error) {
	log := logger.FromContext(ctx)

	if e.client == nil {
		return Extraction{}, fmt.Errorf("ExtractImage: no model configured: %w", ErrExtractionUnavailable)
	}

	resp, err := e.client.GenerateWithImage(ctx, buildImagePrompt(), data, mimeType)
	if err != nil {
		return Extraction{}, fmt.Errorf("ExtractImage: generate content: %w: %w", ErrExtractionUnavailable, err)
	}

	outcome := &ModelOutcome{ModelName: e.client.ModelName(), RawResponse: resp}

	obj, ok := CoerceModelResponse(resp)
	if ok {
		outcome.Coerced = true
		outcome.Object = obj
		return Extraction{Draft: draftFromModelObject(obj, "", domain.SourceImage), Outcome: outcome}, nil
	}

	transcript := transcriptFromResponse(resp)
	log.Warn().Int("transcript_len", len(transcript)).Msg("image reply not coercible, using heuristic over transcript")

	if transcript == "" {
		return Extraction{
			Draft:   domain.ExpenseDraft{Category: domain.CategoryOther, SourceKind: domain.SourceImage},
			Outcome: outcome,
		}, nil
	}

	draft := ExtractHeuristic(transcript)
	draft.SourceKind = domain.SourceImage
	return Extraction{Draft: draft, Outcome: outcome}, nil
}
