package detect

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	veilotel "github.com/veil-sh/veil/internal/otel"
	"github.com/veil-sh/veil/patterns"
)

var tracer = veilotel.Tracer("github.com/veil-sh/veil/internal/detect")

const (
	// minHeuristicLen is the shortest heuristic match kept after trimming.
	minHeuristicLen = 3

	// contextual capture bounds: first run of 3-30 chars from
	// {letters, digits, hyphen, space} after the keyword separator.
	captureExpr = `[A-Za-z0-9][A-Za-z0-9\- ]{2,29}`
)

// captureRe extracts the trailing value after a contextual keyword.
var captureRe = regexp.MustCompile(captureExpr)

// Scanner detects PII in text using a compiled detector catalog.
// A Scanner is immutable after construction and safe for concurrent use;
// each DetectAll call operates on its own input and shares no state.
type Scanner struct {
	structural []Detector
	heuristic  []Detector
	keywords   []string
	denyList   map[string]bool
}

// ScannerOption configures a Scanner via the functional options pattern.
type ScannerOption func(*scannerConfig)

type scannerConfig struct {
	patternFile       string
	enabledTypes      []string
	disabledTypes     []string
	customRecognizers []RecognizerConfig
}

// WithPatternFile loads additional recognizers from a detector YAML file.
// If the file does not exist, it is silently skipped.
func WithPatternFile(path string) ScannerOption {
	return func(c *scannerConfig) { c.patternFile = path }
}

// WithEnabledTypes sets a whitelist of entity types. When non-empty, only
// recognizers with a matching supported_entity will be active.
func WithEnabledTypes(types []string) ScannerOption {
	return func(c *scannerConfig) { c.enabledTypes = types }
}

// WithDisabledTypes sets a blacklist of entity types to exclude.
func WithDisabledTypes(types []string) ScannerOption {
	return func(c *scannerConfig) { c.disabledTypes = types }
}

// WithCustomRecognizers adds caller-supplied recognizer definitions on top
// of the embedded defaults and any global pattern file.
func WithCustomRecognizers(recognizers []RecognizerConfig) ScannerOption {
	return func(c *scannerConfig) { c.customRecognizers = recognizers }
}

// NewScanner creates a PII scanner. Without options it uses the embedded
// defaults. Options layer a global pattern file and per-call recognizers on
// top, merged by recognizer name.
func NewScanner(opts ...ScannerOption) (*Scanner, error) {
	var cfg scannerConfig
	for _, o := range opts {
		o(&cfg)
	}

	// Layer 1: embedded defaults
	defaults, err := ParseDetectorFile(patterns.DetectorsYAML())
	if err != nil {
		return nil, fmt.Errorf("loading default detectors: %w", err)
	}

	denyList := make(map[string]bool, len(defaults.DenyList))
	for _, d := range defaults.DenyList {
		denyList[d] = true
	}
	keywords := defaults.Keywords

	// Layer 2: global pattern file (optional)
	var globalRecs []*RecognizerConfig
	if cfg.patternFile != "" {
		df, err := LoadDetectorFile(cfg.patternFile)
		if err != nil {
			return nil, fmt.Errorf("loading global pattern file: %w", err)
		}
		if df != nil {
			globalRecs = toPtrSlice(df.Recognizers)
			for _, d := range df.DenyList {
				denyList[d] = true
			}
			keywords = append(keywords, df.Keywords...)
		}
	}

	// Layer 3: per-call custom recognizers
	var customRecs []*RecognizerConfig
	if len(cfg.customRecognizers) > 0 {
		customRecs = toPtrSlice(cfg.customRecognizers)
	}

	merged := MergeRecognizers(toPtrSlice(defaults.Recognizers), globalRecs, customRecs)
	merged = FilterByTypes(merged, cfg.enabledTypes, cfg.disabledTypes)

	compiled, err := CompileDetectors(merged)
	if err != nil {
		return nil, fmt.Errorf("compiling detectors: %w", err)
	}

	s := &Scanner{
		keywords: keywords,
		denyList: denyList,
	}
	for _, d := range compiled {
		if d.Category == CategoryHeuristic {
			s.heuristic = append(s.heuristic, d)
		} else {
			s.structural = append(s.structural, d)
		}
	}
	return s, nil
}

// MustNewScanner is like NewScanner but panics on error. Useful for
// zero-config startup where the embedded defaults are expected to always
// compile.
func MustNewScanner(opts ...ScannerOption) *Scanner {
	s, err := NewScanner(opts...)
	if err != nil {
		panic(fmt.Sprintf("detect.NewScanner: %v", err))
	}
	return s
}

// DetectAll runs the structural, heuristic, and contextual passes over text
// and resolves overlaps into a non-overlapping entity set. Deterministic
// for a fixed input and catalog. An empty result is a valid outcome, never
// an error.
func (s *Scanner) DetectAll(ctx context.Context, text string) []Entity {
	_, span := tracer.Start(ctx, "detect.all")
	defer span.End()

	candidates := s.structuralPass(text)
	candidates = append(candidates, s.heuristicPass(text)...)
	candidates = append(candidates, s.contextualPass(text)...)

	resolved := Resolve(candidates)

	span.SetAttributes(
		attribute.Int("pii.candidate_count", len(candidates)),
		attribute.Int("pii.entity_count", len(resolved)),
	)
	return resolved
}

// structuralPass runs every structural detector over the text.
func (s *Scanner) structuralPass(text string) []Entity {
	var out []Entity
	for _, d := range s.structural {
		for _, m := range findAllSpans(d.Pattern, text) {
			out = append(out, Entity{
				Type:       d.Type,
				Text:       text[m[0]:m[1]],
				Start:      m[0],
				End:        m[1],
				Confidence: d.Confidence,
			})
		}
	}
	return out
}

// heuristicPass runs every heuristic detector, trims the match, and drops
// matches shorter than minHeuristicLen or on the deny list.
func (s *Scanner) heuristicPass(text string) []Entity {
	var out []Entity
	for _, d := range s.heuristic {
		for _, m := range findAllSpans(d.Pattern, text) {
			start, end := trimSpan(text, m[0], m[1])
			if end-start < minHeuristicLen {
				continue
			}
			value := text[start:end]
			if s.denyList[value] {
				continue
			}
			out = append(out, Entity{
				Type:       d.Type,
				Text:       value,
				Start:      start,
				End:        end,
				Confidence: d.Confidence,
			})
		}
	}
	return out
}

// contextualPass scans line by line for keyword anchors and extracts the
// trailing value after each hit.
//
// The line's absolute offset is recovered by content search, so duplicate
// lines all resolve to the first occurrence. Known limitation; a robust
// alternative would track cumulative line-start offsets.
func (s *Scanner) contextualPass(text string) []Entity {
	var out []Entity
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		lineStart := strings.Index(text, line)
		for _, kw := range s.keywords {
			kwIdx := strings.Index(lower, kw)
			if kwIdx < 0 {
				continue
			}
			after := line[kwIdx+len(kw):]
			if len(after) == 0 || !isSeparator(after[0]) {
				continue
			}
			// Skip the single separator byte; the capture offset is then
			// lineStart + kwIdx + len(kw) + 1 + position within the rest.
			rest := after[1:]
			loc := captureRe.FindStringIndex(rest)
			if loc == nil {
				continue
			}
			value := strings.TrimRight(rest[loc[0]:loc[1]], " ")
			if len(value) <= 2 {
				continue
			}
			start := lineStart + kwIdx + len(kw) + 1 + loc[0]
			out = append(out, Entity{
				Type:       ContextualType,
				Text:       value,
				Start:      start,
				End:        start + len(value),
				Confidence: ScoreContextual,
			})
		}
	}
	return out
}

// isSeparator reports whether b is a keyword/value separator byte.
func isSeparator(b byte) bool {
	return b == ':' || b == ' ' || b == '\t'
}

// trimSpan narrows [start,end) past surrounding ASCII whitespace.
func trimSpan(text string, start, end int) (int, int) {
	for start < end && isSpaceByte(text[start]) {
		start++
	}
	for end > start && isSpaceByte(text[end-1]) {
		end--
	}
	return start, end
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// findAllSpans returns every non-overlapping match of re in text as
// absolute [start,end) byte offsets. Scanning is pure and restartable: no
// cursor state survives the call, and zero-width matches advance the scan
// position by one byte so matching always terminates.
func findAllSpans(re *regexp.Regexp, text string) [][2]int {
	var spans [][2]int
	pos := 0
	for pos <= len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end == start {
			pos = start + 1
			continue
		}
		spans = append(spans, [2]int{start, end})
		pos = end
	}
	return spans
}
