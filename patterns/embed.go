// Package patterns provides the embedded default detector definitions.
// detectors.yaml uses a recognizer format with a category field mapping
// each recognizer to a fixed confidence tier (structural or heuristic),
// plus top-level keyword and deny-list sections consumed by the
// contextual and heuristic passes.
package patterns

import _ "embed"

//go:embed detectors.yaml
var detectorsYAML []byte

// DetectorsYAML returns the embedded default detector definitions.
func DetectorsYAML() []byte { return detectorsYAML }
