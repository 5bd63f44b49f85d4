// Package pipeline sequences text acquisition, detection, overlap
// resolution, and redaction for one document at a time. Documents are
// independent; a Processor is safe for concurrent use across documents.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/veil-sh/veil/internal/detect"
	veilotel "github.com/veil-sh/veil/internal/otel"
	"github.com/veil-sh/veil/internal/source"
)

var tracer = veilotel.Tracer("github.com/veil-sh/veil/internal/pipeline")

// Result holds the outcome of processing a single document.
type Result struct {
	DocumentID     string          `json:"document_id"`
	Entities       []detect.Entity `json:"entities"`
	Redacted       string          `json:"redacted"`
	EntitiesFound  int             `json:"entities_found"`
	CharsRedacted  int             `json:"chars_redacted"`
	OriginalLength int             `json:"original_length"`
	RedactedLength int             `json:"redacted_length"`
	Elapsed        time.Duration   `json:"elapsed_ns"`
}

// Processor runs the detection pipeline over acquired documents.
type Processor struct {
	scanner  *detect.Scanner
	acquirer *source.Acquirer
	marker   rune
}

// Option configures a Processor.
type Option func(*Processor)

// WithMarker overrides the redaction marker character.
func WithMarker(marker rune) Option {
	return func(p *Processor) { p.marker = marker }
}

// NewProcessor creates a pipeline processor around a scanner and acquirer.
func NewProcessor(scanner *detect.Scanner, acquirer *source.Acquirer, opts ...Option) *Processor {
	p := &Processor{
		scanner:  scanner,
		acquirer: acquirer,
		marker:   detect.DefaultMarker,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFile acquires text from path and runs the core pipeline over it.
// Acquisition is the only step that can fail; detection and redaction are
// pure and treat any string, including empty, as valid input.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.process_file")
	defer span.End()

	text, err := p.acquirer.Acquire(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("acquiring text from %s: %w", path, err)
	}

	result := p.ProcessText(ctx, text)

	log.Debug().
		Str("document_id", result.DocumentID).
		Str("path", path).
		Int("entities", result.EntitiesFound).
		Int("chars_redacted", result.CharsRedacted).
		Dur("elapsed", result.Elapsed).
		Func(veilotel.LogTraceFields(ctx)).
		Msg("document processed")

	return result, nil
}

// ProcessText runs detection, resolution, and redaction over text and
// computes aggregate statistics. Never fails; zero entities is a valid
// outcome and leaves the text unchanged.
func (p *Processor) ProcessText(ctx context.Context, text string) *Result {
	ctx, span := tracer.Start(ctx, "pipeline.process_text")
	defer span.End()

	start := time.Now()

	entities := p.scanner.DetectAll(ctx, text)
	redacted := detect.Redact(text, entities, p.marker)

	charsRedacted := 0
	for _, e := range entities {
		charsRedacted += len(e.Text)
	}
	if charsRedacted > len(text) {
		charsRedacted = len(text)
	}

	result := &Result{
		DocumentID:     uuid.NewString(),
		Entities:       entities,
		Redacted:       redacted,
		EntitiesFound:  len(entities),
		CharsRedacted:  charsRedacted,
		OriginalLength: len(text),
		RedactedLength: len(redacted),
		Elapsed:        time.Since(start),
	}

	span.SetAttributes(
		attribute.Int("pii.entity_count", result.EntitiesFound),
		attribute.Int("pii.chars_redacted", result.CharsRedacted),
	)

	return result
}
