package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/modcheck/modcheck/pkg/block"
	"github.com/modcheck/modcheck/pkg/loader"
)

// runBlocksCmd implements `modcheck blocks`: it loads the requirement
// documents and prints every selectable block ID, one per line.
func runBlocksCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("blocks", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var requirementsDir string
	cmd.StringVar(&requirementsDir, "requirements", "", "Directory of requirement documents (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if requirementsDir == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --requirements is required")
		return 2
	}

	dir := block.NewDirectory()
	if err := loader.New(dir).LoadDir(requirementsDir); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	for _, id := range dir.Selectable() {
		_, _ = fmt.Fprintln(stdout, id)
	}
	return 0
}
