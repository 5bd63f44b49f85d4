package detect

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAll(t *testing.T) {
	scanner := MustNewScanner()
	ctx := context.Background()

	tests := []struct {
		name      string
		text      string
		wantTypes []string
		wantNone  bool
	}{
		{
			name:     "no PII",
			text:     "the quick brown fox jumps over the lazy dog",
			wantNone: true,
		},
		{
			name:      "email address",
			text:      "reach me at user@example.com",
			wantTypes: []string{"email"},
		},
		{
			name:      "grouped digit id",
			text:      "number 123-45-6789 on file",
			wantTypes: []string{"ssn"},
		},
		{
			name:      "credit card visa",
			text:      "card 4111-1111-1111-1111 expires soon",
			wantTypes: []string{"credit_card"},
		},
		{
			name:      "ipv4 address",
			text:      "server at 192.168.1.100 responded",
			wantTypes: []string{"ip_address"},
		},
		{
			name:      "mac address",
			text:      "interface 00:1A:2B:3C:4D:5E is up",
			wantTypes: []string{"mac_address"},
		},
		{
			name:      "full name heuristic",
			text:      "signed by John Smith yesterday",
			wantTypes: []string{HeuristicTypePrefix + "full_name"},
		},
		{
			name:      "titled name heuristic",
			text:      "approved by Dr. Jane Doe",
			wantTypes: []string{HeuristicTypePrefix + "titled_name"},
		},
		{
			name:      "company heuristic",
			text:      "employed at TechCorp Inc since 2019",
			wantTypes: []string{HeuristicTypePrefix + "company"},
		},
		{
			name:     "empty text",
			text:     "",
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := scanner.DetectAll(ctx, tt.text)

			if tt.wantNone {
				assert.Empty(t, entities)
				return
			}
			require.NotEmpty(t, entities)

			types := make(map[string]bool)
			for _, e := range entities {
				types[e.Type] = true
			}
			for _, wantType := range tt.wantTypes {
				assert.True(t, types[wantType], "missing type %s in %v", wantType, types)
			}
		})
	}
}

func TestDetectAllContactFixture(t *testing.T) {
	scanner := MustNewScanner()
	text := "Contact: john@example.com or 555-123-4567"

	entities := scanner.DetectAll(context.Background(), text)

	var email, phone *Entity
	for i := range entities {
		switch entities[i].Type {
		case "email":
			email = &entities[i]
		case "phone":
			phone = &entities[i]
		}
	}
	require.NotNil(t, email, "email entity expected")
	require.NotNil(t, phone, "phone entity expected")

	assert.Equal(t, "john@example.com", email.Text)
	assert.Equal(t, "john@example.com", text[email.Start:email.End])
	assert.Equal(t, "555-123-4567", phone.Text)
	assert.Equal(t, "555-123-4567", text[phone.Start:phone.End])

	redacted := Redact(text, entities, '*')
	assert.Equal(t, len(text), len(redacted))
	assert.True(t, strings.HasPrefix(redacted, "Contact: "), "prefix must be untouched")
	assert.Contains(t, redacted, " or ")
	assert.NotContains(t, redacted, "john@example.com")
	assert.NotContains(t, redacted, "555-123-4567")
	assert.Contains(t, redacted, strings.Repeat("*", len("john@example.com")))
	assert.Contains(t, redacted, strings.Repeat("*", len("555-123-4567")))
}

// A keyword-anchored detection and a structural detection over the same
// span must collapse to the structural one (higher confidence).
func TestDetectAllStructuralBeatsContextual(t *testing.T) {
	scanner := MustNewScanner()
	text := "SSN: 123-45-6789"

	entities := scanner.DetectAll(context.Background(), text)

	require.Len(t, entities, 1)
	assert.Equal(t, "ssn", entities[0].Type)
	assert.Equal(t, "123-45-6789", entities[0].Text)
	assert.Equal(t, 5, entities[0].Start)
	assert.Equal(t, 16, entities[0].End)
	assert.Equal(t, ScoreStructural, entities[0].Confidence)
}

func TestHeuristicDenyList(t *testing.T) {
	scanner := MustNewScanner()

	entities := scanner.DetectAll(context.Background(), "Main Street")
	assert.Empty(t, entities, "denylisted placeholder must not become an entity")
}

func TestContextualPassOffsets(t *testing.T) {
	scanner := MustNewScanner()
	text := "Review notes\nsalary: forty two thousand\n"

	entities := scanner.contextualPass(text)

	require.Len(t, entities, 1)
	e := entities[0]
	assert.Equal(t, ContextualType, e.Type)
	assert.Equal(t, ScoreContextual, e.Confidence)
	assert.Equal(t, "forty two thousand", e.Text)
	assert.Equal(t, e.Text, text[e.Start:e.End], "offset must index the original text")
}

func TestContextualPassShortValueDropped(t *testing.T) {
	scanner := MustNewScanner()

	entities := scanner.contextualPass("tax id: no\n")
	assert.Empty(t, entities, "captures of 2 chars or fewer are dropped")
}

func TestDetectAllDeterministic(t *testing.T) {
	scanner := MustNewScanner()
	ctx := context.Background()
	text := "Dr. Alice Brown, card 4111111111111111, mail alice@corp.example, SSN: 123-45-6789"

	first := scanner.DetectAll(ctx, text)
	second := scanner.DetectAll(ctx, text)

	assert.Equal(t, first, second, "identical input must yield identical ordered entities")
}

func TestDetectAllResolvedNonOverlapping(t *testing.T) {
	scanner := MustNewScanner()
	texts := []string{
		"Contact: john@example.com or 555-123-4567",
		"SSN: 123-45-6789 card 4111111111111111",
		"Mr. John Q. Public lives at 42 Elm Street, Springfield, IL 62704",
		"account number: 12345678901 routing number: 021000021",
	}

	for _, text := range texts {
		entities := scanner.DetectAll(context.Background(), text)
		for i := 0; i < len(entities); i++ {
			for j := i + 1; j < len(entities); j++ {
				assert.False(t, entities[i].Overlaps(entities[j]),
					"entities %v and %v overlap in %q", entities[i], entities[j], text)
			}
		}
	}
}

func TestNewScannerWithCustomRecognizers(t *testing.T) {
	custom := []RecognizerConfig{
		{
			Name:            "Employee ID",
			SupportedEntity: "EMPLOYEE_ID",
			Patterns: []PatternConfig{
				{Name: "emp id", Regex: `\bEMP-\d{6}\b`},
			},
		},
	}

	scanner, err := NewScanner(WithCustomRecognizers(custom))
	require.NoError(t, err)

	entities := scanner.DetectAll(context.Background(), "contact EMP-123456 for details")

	found := false
	for _, e := range entities {
		if e.Type == "employee_id" && e.Text == "EMP-123456" {
			found = true
		}
	}
	assert.True(t, found, "custom employee ID pattern should match")
}

func TestNewScannerWithPatternFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
recognizers:
  - name: "Project Code"
    supported_entity: "PROJECT_CODE"
    patterns:
      - name: "project code"
        regex: '\bPROJ-[A-Z]{3}-\d{4}\b'
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	scanner, err := NewScanner(WithPatternFile(path))
	require.NoError(t, err)

	entities := scanner.DetectAll(context.Background(), "working on PROJ-ABC-1234")

	found := false
	for _, e := range entities {
		if e.Type == "project_code" {
			found = true
		}
	}
	assert.True(t, found, "pattern file recognizer should be loaded")
}

func TestNewScannerWithMissingPatternFile(t *testing.T) {
	scanner, err := NewScanner(WithPatternFile("/nonexistent/patterns.yaml"))
	require.NoError(t, err, "missing pattern file should be silently skipped")
	require.NotNil(t, scanner)
	assert.NotEmpty(t, scanner.structural, "should still have defaults")
}

func TestNewScannerWithEnabledTypes(t *testing.T) {
	scanner, err := NewScanner(WithEnabledTypes([]string{"EMAIL"}))
	require.NoError(t, err)

	entities := scanner.DetectAll(context.Background(), "user@example.com at 192.168.1.100")

	types := make(map[string]bool)
	for _, e := range entities {
		types[e.Type] = true
	}
	assert.True(t, types["email"], "email should be detected")
	assert.False(t, types["ip_address"], "ip should be filtered out")
}

func TestNewScannerWithDisabledTypes(t *testing.T) {
	scanner, err := NewScanner(WithDisabledTypes([]string{"IP_ADDRESS", "POSTAL_CODE", "BANK_ACCOUNT"}))
	require.NoError(t, err)

	entities := scanner.DetectAll(context.Background(), "server at 192.168.1.100")
	assert.Empty(t, entities, "ip should be filtered out")
}

func TestFindAllSpansZeroWidthAdvances(t *testing.T) {
	// a* matches zero-width everywhere; the scan must still terminate and
	// only report the non-empty matches.
	re := regexp.MustCompile(`a*`)
	spans := findAllSpans(re, "baab")

	require.Len(t, spans, 1)
	assert.Equal(t, [2]int{1, 3}, spans[0])
}

func TestFindAllSpansNonOverlapping(t *testing.T) {
	re := regexp.MustCompile(`\d{2}`)
	spans := findAllSpans(re, "12345")

	assert.Equal(t, [][2]int{{0, 2}, {2, 4}}, spans)
}
