// Package report renders human-readable summaries of pipeline results.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/veil-sh/veil/internal/pipeline"
)

// Write prints a scan summary for one document: aggregate counters followed
// by per-type counts and the individual detections with offsets.
func Write(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "Scan summary for document %s\n", res.DocumentID)
	fmt.Fprintf(w, "  Entities found:     %d\n", res.EntitiesFound)
	fmt.Fprintf(w, "  Characters redacted: %d / %d\n", res.CharsRedacted, res.OriginalLength)
	fmt.Fprintf(w, "  Processing time:    %s\n", res.Elapsed)

	if res.EntitiesFound == 0 {
		fmt.Fprintln(w, "  No PII detected.")
		return
	}

	typeCounts := make(map[string]int)
	for _, e := range res.Entities {
		typeCounts[e.Type]++
	}
	var types []string
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Fprintln(w, "  By type:")
	for _, t := range types {
		fmt.Fprintf(w, "    %-24s %d\n", t, typeCounts[t])
	}

	fmt.Fprintln(w, "  Detections:")
	for _, e := range res.Entities {
		fmt.Fprintf(w, "    [%d:%d] %-24s %.1f  %s\n", e.Start, e.End, e.Type, e.Confidence, e.Text)
	}
}
