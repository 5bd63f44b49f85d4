package detect

import (
	"sort"
	"strings"
)

// DefaultMarker is the redaction marker used when none is configured.
// A single-byte marker keeps redacted output the same byte length as the
// input; multi-byte markers preserve length in marker repetitions only.
const DefaultMarker = '*'

// Redact returns text with each entity span replaced by the marker repeated
// len(Entity.Text) times. Entities are spliced in descending Start order so
// earlier offsets stay valid throughout. Text outside the spans is
// untouched; an empty entity list returns the input unchanged.
func Redact(text string, entities []Entity, marker rune) string {
	if len(entities) == 0 {
		return text
	}

	sorted := make([]Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	out := text
	for _, e := range sorted {
		if e.Start < 0 || e.End > len(out) || e.Start >= e.End {
			continue
		}
		replacement := strings.Repeat(string(marker), len(e.Text))
		out = out[:e.Start] + replacement + out[e.End:]
	}
	return out
}
