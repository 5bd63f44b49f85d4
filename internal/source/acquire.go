// Package source turns file-like inputs into the exact text the detection
// pipeline scans. All format-specific handling (tabular flattening, JSON
// re-serialization, HTML tag stripping) happens here, before detection,
// because every entity offset is relative to the string this package
// returns.
package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	veilotel "github.com/veil-sh/veil/internal/otel"
)

var tracer = veilotel.Tracer("github.com/veil-sh/veil/internal/source")

// Acquirer reads files and normalizes their content to plain text.
type Acquirer struct {
	maxSize int64 // max file size in bytes
}

// NewAcquirer creates a text acquirer with a size limit.
func NewAcquirer(maxSizeMB int) *Acquirer {
	return &Acquirer{
		maxSize: int64(maxSizeMB) * 1024 * 1024,
	}
}

// Acquire reads and normalizes text from a file.
// Supported formats: .txt, .md, .log (raw), .csv/.tsv (fields flattened to
// space-joined lines), .json (pretty-printed), .html/.htm (tags stripped).
// Any failure is fatal for the document and wraps the underlying cause.
func (a *Acquirer) Acquire(ctx context.Context, path string) (string, error) {
	_, span := tracer.Start(ctx, "source.acquire")
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat file %s: %w", path, err)
	}

	if info.Size() > a.maxSize {
		return "", fmt.Errorf("file size %d exceeds limit %d bytes", info.Size(), a.maxSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md", ".log":
		return string(content), nil

	case ".csv":
		return flattenTabular(content, ',')

	case ".tsv":
		return flattenTabular(content, '\t')

	case ".json":
		return reserializeJSON(content)

	case ".html", ".htm":
		p := bluemonday.StrictPolicy()
		return p.Sanitize(string(content)), nil

	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// flattenTabular joins each record's fields with single spaces and records
// with newlines, so row-local patterns (e.g. an SSN split across no cells)
// remain scannable as one line.
func flattenTabular(content []byte, delim rune) (string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing tabular data: %w", err)
	}

	var sb strings.Builder
	for i, record := range records {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(record, " "))
	}
	return sb.String(), nil
}

// reserializeJSON pretty-prints JSON so the scanner sees a stable,
// deterministic layout regardless of the input formatting.
func reserializeJSON(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, content, "", "  "); err != nil {
		return "", fmt.Errorf("parsing structured data: %w", err)
	}
	return buf.String(), nil
}
