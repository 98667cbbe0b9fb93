package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	pruneSince time.Duration
	resetYes   bool
	exportOut  string
	importIn   string
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete translations with no discovery sightings in the given window",
	Long: `Prune removes every translation key that has not been sighted since
the cutoff. Run a full crawl (autotranslate over the whole site) first so the
discovery log covers every live page, or current strings will be removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		engine, _, err := buildEngine(logger)
		if err != nil {
			printError("building engine", err)
			return err
		}
		since := time.Now().Add(-pruneSince)
		n, err := engine.DeleteUnusedTranslations(since)
		if err != nil {
			printError("pruning", err)
			return err
		}
		fmt.Fprintf(os.Stdout, "removed %d unused translations\n", n)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all translation data and the discovery log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("reset is destructive; pass --yes to confirm")
		}
		logger := newLogger()
		engine, _, err := buildEngine(logger)
		if err != nil {
			printError("building engine", err)
			return err
		}
		if err := engine.Reset(); err != nil {
			printError("resetting", err)
			return err
		}
		fmt.Fprintln(os.Stdout, "translation data cleared")
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the translation catalog as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		engine, _, err := buildEngine(logger)
		if err != nil {
			printError("building engine", err)
			return err
		}
		meta := map[string]string{"source": engine.Config().LngSource}
		if exportOut != "" {
			return engine.Catalog().ExportToFile(exportOut, meta)
		}
		return engine.Catalog().Export(os.Stdout, meta)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import translation catalog entries from a JSON export",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		engine, _, err := buildEngine(logger)
		if err != nil {
			printError("building engine", err)
			return err
		}
		if importIn == "" {
			return fmt.Errorf("--input is required")
		}
		result, err := engine.Catalog().ImportFromFile(importIn)
		if err != nil {
			printError("importing", err)
			return err
		}
		fmt.Fprintf(os.Stdout, "imported %d entries (%d failed)\n", result.Imported, result.Failed)
		return nil
	},
}

func init() {
	pruneCmd.Flags().DurationVar(&pruneSince, "since", 30*24*time.Hour, "sighting window to keep")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm destructive reset")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default: stdout)")
	importCmd.Flags().StringVarP(&importIn, "input", "i", "", "input file (required)")
	rootCmd.AddCommand(pruneCmd, resetCmd, exportCmd, importCmd)
}
