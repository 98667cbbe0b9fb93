// Command pageling runs the instant page translation engine: a translating
// reverse proxy plus tooling for one-shot translation, string extraction and
// translation data maintenance.
package main

import (
	"os"

	"github.com/pageling/pageling/cmd/pageling/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
