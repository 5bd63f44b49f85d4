package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veil-sh/veil/internal/detect"
	"github.com/veil-sh/veil/internal/pipeline"
	"github.com/veil-sh/veil/internal/source"
)

func TestWrite(t *testing.T) {
	proc := pipeline.NewProcessor(detect.MustNewScanner(), source.NewAcquirer(1))
	result := proc.ProcessText(context.Background(), "Contact: john@example.com or 555-123-4567")

	buf := new(bytes.Buffer)
	Write(buf, result)

	out := buf.String()
	assert.Contains(t, out, "Entities found:     2")
	assert.Contains(t, out, "email")
	assert.Contains(t, out, "phone")
	assert.Contains(t, out, "john@example.com")
	assert.Contains(t, out, result.DocumentID)
}

func TestWriteNoPII(t *testing.T) {
	proc := pipeline.NewProcessor(detect.MustNewScanner(), source.NewAcquirer(1))
	result := proc.ProcessText(context.Background(), "nothing here")

	buf := new(bytes.Buffer)
	Write(buf, result)

	assert.Contains(t, buf.String(), "No PII detected.")
}
