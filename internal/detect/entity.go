// Package detect implements the PII detection core: a catalog of regex
// detectors compiled from YAML recognizer definitions, a three-pass
// candidate extractor, confidence-based overlap resolution, and a
// fixed-width redaction renderer.
package detect

// Detector categories. Each category carries a fixed confidence tier;
// the contract structural > heuristic > contextual is load-bearing for
// overlap resolution and must stay explicit.
const (
	CategoryStructural = "structural"
	CategoryHeuristic  = "heuristic"
)

// Fixed per-category confidence weights. No learning, no calibration.
const (
	ScoreStructural = 0.8
	ScoreHeuristic  = 0.7
	ScoreContextual = 0.6
)

// HeuristicTypePrefix distinguishes heuristic entity types from structural
// types of the same name (e.g. "heuristic_long_date" vs "date_of_birth").
const HeuristicTypePrefix = "heuristic_"

// ContextualType tags entities produced by keyword-anchored proximity
// extraction. The captured text is free-form, so no finer type is known.
const ContextualType = "contextual_pii"

// Entity represents a detected PII candidate.
//
// Start and End are half-open byte offsets into the original, unmodified
// text (0 <= Start < End <= len(text)). Offsets are never re-based
// mid-pipeline; every stage computes against the same string.
type Entity struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Overlaps reports whether the entity's span has a non-empty intersection
// with other. Containment is not required.
func (e Entity) Overlaps(other Entity) bool {
	return e.Start < other.End && e.End > other.Start
}
