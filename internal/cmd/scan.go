package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veil-sh/veil/internal/config"
	"github.com/veil-sh/veil/internal/detect"
	"github.com/veil-sh/veil/internal/pipeline"
	"github.com/veil-sh/veil/internal/report"
	"github.com/veil-sh/veil/internal/source"
)

var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan FILE",
	Short: "Detect PII in a file and print a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "machine-readable JSON output")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "scan")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	proc, err := newProcessor(cfg)
	if err != nil {
		return err
	}

	result, err := proc.ProcessFile(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if scanJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	report.Write(out, result)
	return nil
}

// newProcessor assembles a pipeline processor from resolved config.
func newProcessor(cfg *config.Config) (*pipeline.Processor, error) {
	scanner, err := detect.NewScanner(
		detect.WithPatternFile(cfg.PatternFile),
		detect.WithEnabledTypes(cfg.EnabledTypes),
		detect.WithDisabledTypes(cfg.DisabledTypes),
	)
	if err != nil {
		return nil, fmt.Errorf("building scanner: %w", err)
	}

	acquirer := source.NewAcquirer(cfg.MaxFileMB)
	return pipeline.NewProcessor(scanner, acquirer, pipeline.WithMarker(cfg.MarkerRune())), nil
}
