package detect

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmptyEntityListIsIdentity(t *testing.T) {
	text := "nothing sensitive here"
	assert.Equal(t, text, Redact(text, nil, '*'))
	assert.Equal(t, text, Redact(text, []Entity{}, '*'))
}

func TestRedactSingleSpan(t *testing.T) {
	text := "mail me at john@example.com today"
	entities := []Entity{
		{Type: "email", Text: "john@example.com", Start: 11, End: 27, Confidence: ScoreStructural},
	}

	redacted := Redact(text, entities, '*')

	assert.Equal(t, "mail me at **************** today", redacted)
	assert.Equal(t, len(text), len(redacted))
}

func TestRedactLengthInvarianceSingleByteMarker(t *testing.T) {
	scanner := MustNewScanner()
	texts := []string{
		"Contact: john@example.com or 555-123-4567",
		"SSN: 123-45-6789",
		"Dr. Jane Doe, 42 Elm Street, Springfield, IL 62704",
		"",
		"no pii at all",
	}

	for _, text := range texts {
		entities := scanner.DetectAll(context.Background(), text)
		redacted := Redact(text, entities, '*')
		assert.Equal(t, len(text), len(redacted), "length must be preserved for %q", text)
	}
}

func TestRedactMultipleSpansDescendingSplice(t *testing.T) {
	text := "a@b.co and c@d.co and e@f.co"
	entities := []Entity{
		{Type: "email", Text: "a@b.co", Start: 0, End: 6, Confidence: ScoreStructural},
		{Type: "email", Text: "c@d.co", Start: 11, End: 17, Confidence: ScoreStructural},
		{Type: "email", Text: "e@f.co", Start: 22, End: 28, Confidence: ScoreStructural},
	}

	redacted := Redact(text, entities, '#')

	assert.Equal(t, "###### and ###### and ######", redacted)
}

func TestRedactInputOrderIrrelevant(t *testing.T) {
	text := "x 111 y 222 z"
	ascending := []Entity{
		{Type: "n", Text: "111", Start: 2, End: 5, Confidence: ScoreStructural},
		{Type: "n", Text: "222", Start: 8, End: 11, Confidence: ScoreStructural},
	}
	descending := []Entity{ascending[1], ascending[0]}

	assert.Equal(t, Redact(text, ascending, '*'), Redact(text, descending, '*'))
}

func TestRedactTextOutsideSpansUntouched(t *testing.T) {
	text := "before 123-45-6789 after"
	entities := []Entity{
		{Type: "ssn", Text: "123-45-6789", Start: 7, End: 18, Confidence: ScoreStructural},
	}

	redacted := Redact(text, entities, '*')

	assert.True(t, strings.HasPrefix(redacted, "before "))
	assert.True(t, strings.HasSuffix(redacted, " after"))
	assert.NotContains(t, redacted, "123-45-6789")
}

func TestRedactMultiByteMarker(t *testing.T) {
	// Marker repetitions still equal the span length; byte length is not
	// preserved for multi-byte markers.
	text := "id 1234"
	entities := []Entity{
		{Type: "n", Text: "1234", Start: 3, End: 7, Confidence: ScoreStructural},
	}

	redacted := Redact(text, entities, '█')

	assert.Equal(t, "id "+strings.Repeat("█", 4), redacted)
	assert.NotEqual(t, len(text), len(redacted))
}

func TestRedactSkipsOutOfRangeSpans(t *testing.T) {
	text := "short"
	entities := []Entity{
		{Type: "n", Text: "overflow", Start: 2, End: 50, Confidence: ScoreStructural},
	}

	assert.Equal(t, text, Redact(text, entities, '*'))
}
