package detect

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DetectorFile is the top-level YAML structure for a detector config file.
// Besides the recognizer list it carries the shared heuristic deny list and
// the contextual keyword anchors.
type DetectorFile struct {
	Recognizers []RecognizerConfig `yaml:"recognizers"`
	DenyList    []string           `yaml:"deny_list,omitempty"`
	Keywords    []string           `yaml:"keywords,omitempty"`
}

// RecognizerConfig is a single named recognizer definition.
type RecognizerConfig struct {
	Name            string          `yaml:"name" json:"name"`
	SupportedEntity string          `yaml:"supported_entity" json:"supported_entity"`
	Category        string          `yaml:"category" json:"category"`
	Enabled         *bool           `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Patterns        []PatternConfig `yaml:"patterns,omitempty" json:"patterns,omitempty"`
}

// PatternConfig is a single regex pattern within a recognizer.
type PatternConfig struct {
	Name  string `yaml:"name" json:"name"`
	Regex string `yaml:"regex" json:"regex"`
}

// Detector is a compiled, ready-to-run detection rule.
type Detector struct {
	Name       string
	Type       string
	Category   string
	Pattern    *regexp.Regexp
	Confidence float64
}

// isEnabled returns true if the recognizer is enabled (defaults to true when nil).
func (r *RecognizerConfig) isEnabled() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// ParseDetectorFile parses detector YAML bytes into a DetectorFile.
func ParseDetectorFile(data []byte) (*DetectorFile, error) {
	var df DetectorFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parsing detector YAML: %w", err)
	}
	return &df, nil
}

// LoadDetectorFile reads and parses a detector YAML file from disk.
// Returns nil (not an error) if the file does not exist, so callers can
// treat a missing global config as a no-op.
func LoadDetectorFile(path string) (*DetectorFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading detector file %s: %w", path, err)
	}
	return ParseDetectorFile(data)
}

// MergeRecognizers performs a layered merge: defaults, then global
// overrides, then per-call overrides. Later layers override earlier ones by
// matching on the recognizer Name field. New recognizers are appended.
func MergeRecognizers(layers ...[]*RecognizerConfig) []RecognizerConfig {
	index := make(map[string]int)
	var merged []RecognizerConfig

	for _, layer := range layers {
		for _, rc := range layer {
			if rc == nil {
				continue
			}
			if idx, exists := index[rc.Name]; exists {
				merged[idx] = *rc
			} else {
				index[rc.Name] = len(merged)
				merged = append(merged, *rc)
			}
		}
	}

	return merged
}

// toPtrSlice converts []RecognizerConfig to []*RecognizerConfig for MergeRecognizers.
func toPtrSlice(configs []RecognizerConfig) []*RecognizerConfig {
	ptrs := make([]*RecognizerConfig, len(configs))
	for i := range configs {
		ptrs[i] = &configs[i]
	}
	return ptrs
}

// FilterByTypes applies enabled/disabled entity-type filters to a
// recognizer list. If enabled is non-empty, only recognizers with a
// matching supported_entity are kept (whitelist). Then any recognizer in
// disabled is removed (blacklist).
func FilterByTypes(recognizers []RecognizerConfig, enabled, disabled []string) []RecognizerConfig {
	result := recognizers

	if len(enabled) > 0 {
		allowed := make(map[string]bool, len(enabled))
		for _, e := range enabled {
			allowed[e] = true
		}
		var filtered []RecognizerConfig
		for _, r := range result {
			if allowed[r.SupportedEntity] {
				filtered = append(filtered, r)
			}
		}
		result = filtered
	}

	if len(disabled) > 0 {
		blocked := make(map[string]bool, len(disabled))
		for _, e := range disabled {
			blocked[e] = true
		}
		var filtered []RecognizerConfig
		for _, r := range result {
			if !blocked[r.SupportedEntity] {
				filtered = append(filtered, r)
			}
		}
		result = filtered
	}

	return result
}

// CompileDetectors converts recognizer configs into the compiled []Detector
// slice used by the Scanner at runtime. Disabled recognizers are skipped.
// Each regex pattern in a recognizer produces one Detector entry, typed by
// the recognizer's supported_entity (lower_snake_case internally) and
// scored by its category. Heuristic types get the category prefix so they
// never collide with structural types of the same name.
func CompileDetectors(recognizers []RecognizerConfig) ([]Detector, error) {
	var detectors []Detector

	for _, rec := range recognizers {
		if !rec.isEnabled() {
			continue
		}
		confidence := ScoreStructural
		typeName := toLowerSnake(rec.SupportedEntity)
		switch rec.Category {
		case CategoryStructural, "":
			// structural is the default for bare recognizers
		case CategoryHeuristic:
			confidence = ScoreHeuristic
			typeName = HeuristicTypePrefix + typeName
		default:
			return nil, fmt.Errorf("recognizer %q: unknown category %q", rec.Name, rec.Category)
		}
		for _, p := range rec.Patterns {
			compiled, err := regexp.Compile(p.Regex)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern %q in recognizer %q: %w", p.Name, rec.Name, err)
			}
			detectors = append(detectors, Detector{
				Name:       rec.Name,
				Type:       typeName,
				Category:   rec.Category,
				Pattern:    compiled,
				Confidence: confidence,
			})
		}
	}

	return detectors, nil
}

// toLowerSnake converts SCREAMING_SNAKE_CASE to lower_snake_case.
func toLowerSnake(s string) string {
	result := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			result = append(result, c+'a'-'A')
		} else {
			result = append(result, c)
		}
	}
	return string(result)
}
