package cmd

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veil-sh/veil/internal/config"
)

var (
	redactOutput string
	redactMarker string
)

var redactCmd = &cobra.Command{
	Use:   "redact FILE",
	Short: "Redact PII in a file and print the rewritten text",
	Long: `Redact scans FILE for PII and prints the text with every detected span
replaced by a run of the marker character matching the span's length.
Output goes to stdout unless -o is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runRedact,
}

func init() {
	redactCmd.Flags().StringVarP(&redactOutput, "output", "o", "", "write redacted text to this file instead of stdout")
	redactCmd.Flags().StringVar(&redactMarker, "marker", "", "redaction marker character (default from config)")
	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "redact")
	defer span.End()

	if redactMarker != "" {
		viper.Set(config.KeyMarker, redactMarker)
	}

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

	log.Info().
		Int("entities", result.EntitiesFound).
		Int("chars_redacted", result.CharsRedacted).
		Dur("elapsed", result.Elapsed).
		Msg("redaction complete")

	if utf8.RuneLen(cfg.MarkerRune()) > 1 && result.RedactedLength != result.OriginalLength {
		log.Warn().Msg("multi-byte marker: redacted output differs in byte length from the input")
	}

	if redactOutput != "" {
		if err := os.WriteFile(redactOutput, []byte(result.Redacted), 0o644); err != nil {
			return fmt.Errorf("writing redacted output: %w", err)
		}
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), result.Redacted)
	return nil
}
