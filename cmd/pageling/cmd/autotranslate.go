package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pageling/pageling"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	autoURLFile string
	autoChunk   int
	autoCursor  int
	autoOnce    bool
)

var autotranslateCmd = &cobra.Command{
	Use:   "autotranslate [url ...]",
	Short: "Machine-translate a list of page URLs in resumable chunks",
	Long: `Autotranslate fetches each URL, renders it through the translation
pipeline with automatic translation forced on, and persists everything it
learned. Work is chunked: each chunk processes a bounded slice of the
(URL x language) queue and prints a resumption cursor, so a run can be
interrupted and resumed with --cursor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		engine, usage, err := buildEngine(logger)
		if err != nil {
			printError("building engine", err)
			return err
		}

		urls := append([]string(nil), args...)
		if autoURLFile != "" {
			fromFile, err := readURLList(autoURLFile)
			if err != nil {
				printError("reading url list", err)
				return err
			}
			urls = append(urls, fromFile...)
		}
		if len(urls) == 0 {
			return fmt.Errorf("no URLs given (arguments or --urls file)")
		}

		queue := engine.BuildBatchQueue(urls)
		tok := pageling.BatchToken{Cursor: autoCursor}
		for {
			result, err := engine.AutoTranslateChunk(cmd.Context(), queue, tok, autoChunk)
			if err != nil {
				printError("auto-translating", err)
				return err
			}
			logger.WithFields(logrus.Fields{
				"processed": result.Processed,
				"failed":    result.Failed,
			}).Info("chunk complete")
			if result.Done() {
				break
			}
			tok = *result.Next
			if autoOnce {
				fmt.Fprintf(os.Stdout, "resume with --cursor %d\n", tok.Cursor)
				break
			}
		}

		for p, chars := range usage.Totals() {
			logger.WithFields(logrus.Fields{"provider": p, "chars": chars}).Info("provider usage")
		}
		return nil
	},
}

// readURLList reads one URL per line, skipping blanks and comments.
func readURLList(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}

func init() {
	autotranslateCmd.Flags().StringVar(&autoURLFile, "urls", "", "file with one URL per line")
	autotranslateCmd.Flags().IntVar(&autoChunk, "chunk", 10, "items per chunk")
	autotranslateCmd.Flags().IntVar(&autoCursor, "cursor", 0, "resume from this queue position")
	autotranslateCmd.Flags().BoolVar(&autoOnce, "once", false, "process a single chunk and print the resumption cursor")
	rootCmd.AddCommand(autotranslateCmd)
}
