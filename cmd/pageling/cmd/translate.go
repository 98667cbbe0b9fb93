package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	translateLng    string
	translateOutput string
)

var translateCmd = &cobra.Command{
	Use:   "translate [file]",
	Short: "One-shot translation of an HTML file (or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		engine, usage, err := buildEngine(logger)
		if err != nil {
			printError("building engine", err)
			return err
		}

		var input []byte
		if len(args) == 0 {
			input, err = io.ReadAll(os.Stdin)
		} else {
			input, err = os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
		}
		if err != nil {
			printError("reading input", err)
			return err
		}

		out, err := engine.Translate(cmd.Context(), string(input), translateLng)
		if err != nil {
			printError("translating", err)
			return err
		}

		if translateOutput != "" {
			if err := os.WriteFile(translateOutput, []byte(out), 0o644); err != nil {
				printError("writing output", err)
				return err
			}
		} else {
			fmt.Fprint(os.Stdout, out)
		}

		for p, chars := range usage.Totals() {
			logger.WithField("provider", p).WithField("chars", chars).Debug("provider usage")
		}
		return nil
	},
}

func init() {
	translateCmd.Flags().StringVar(&translateLng, "lng", "", "target language code (required)")
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "output file (default: stdout)")
	_ = translateCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(translateCmd)
}
