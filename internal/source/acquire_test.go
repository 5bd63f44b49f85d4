package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAcquirePlainText(t *testing.T) {
	a := NewAcquirer(1)
	path := writeTemp(t, "note.txt", "Contact: john@example.com\n")

	text, err := a.Acquire(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Contact: john@example.com\n", text)
}

func TestAcquireCSVFlattened(t *testing.T) {
	a := NewAcquirer(1)
	path := writeTemp(t, "people.csv", "name,email\nJohn Doe,john@example.com\n")

	text, err := a.Acquire(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "name email\nJohn Doe john@example.com", text)
}

func TestAcquireTSVFlattened(t *testing.T) {
	a := NewAcquirer(1)
	path := writeTemp(t, "people.tsv", "name\temail\nJane Doe\tjane@example.com\n")

	text, err := a.Acquire(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "name email\nJane Doe jane@example.com", text)
}

func TestAcquireJSONPrettyPrinted(t *testing.T) {
	a := NewAcquirer(1)
	path := writeTemp(t, "record.json", `{"email":"john@example.com"}`)

	text, err := a.Acquire(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"email\": \"john@example.com\"\n}", text)
}

func TestAcquireJSONMalformed(t *testing.T) {
	a := NewAcquirer(1)
	path := writeTemp(t, "broken.json", `{"email": `)

	_, err := a.Acquire(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing structured data")
}

func TestAcquireHTMLStripped(t *testing.T) {
	a := NewAcquirer(1)
	path := writeTemp(t, "page.html", `<p>Mail <b>john@example.com</b></p><script>evil()</script>`)

	text, err := a.Acquire(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "john@example.com")
	assert.NotContains(t, text, "<p>")
	assert.NotContains(t, text, "evil()")
}

func TestAcquireMissingFile(t *testing.T) {
	a := NewAcquirer(1)

	_, err := a.Acquire(context.Background(), "/nonexistent/input.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat file")
}

func TestAcquireUnsupportedExtension(t *testing.T) {
	a := NewAcquirer(1)
	path := writeTemp(t, "image.png", "not really a png")

	_, err := a.Acquire(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestAcquireSizeLimit(t *testing.T) {
	a := NewAcquirer(1)
	path := writeTemp(t, "big.txt", strings.Repeat("x", 2*1024*1024))

	_, err := a.Acquire(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}
