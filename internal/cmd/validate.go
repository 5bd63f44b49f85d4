package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veil-sh/veil/internal/detect"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate a detector pack file against the schema",
	Long: `Validate checks a detector pack YAML file for schema errors (missing
fields, unknown categories, malformed pattern entries) and verifies that
every regex compiles.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, span := tracer.Start(cmd.Context(), "validate")
	defer span.End()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading detector pack: %w", err)
	}

	if err := detect.ValidateSchema(data); err != nil {
		return fmt.Errorf("validating %s: %w", args[0], err)
	}

	// Schema-valid packs can still carry regexes Go cannot compile.
	df, err := detect.ParseDetectorFile(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	if _, err := detect.CompileDetectors(df.Recognizers); err != nil {
		return fmt.Errorf("compiling %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (%d recognizers)\n", args[0], len(df.Recognizers))
	return nil
}
