package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [file]",
	Short: "Extract all translatable strings from an HTML file (or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		engine, _, err := buildEngine(logger)
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

		records, err := engine.Tokenize(cmd.Context(), string(input))
		if err != nil {
			printError("tokenizing", err)
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	},
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
}
