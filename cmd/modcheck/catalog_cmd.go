package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/modcheck/modcheck/pkg/catalog"
)

// runCatalogCmd implements `modcheck catalog import|resolve`.
func runCatalogCmd(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		_, _ = fmt.Fprintln(stderr, "usage: modcheck catalog <import|resolve> [flags]")
		return 2
	}
	switch args[0] {
	case "import":
		return runCatalogImport(args[1:], stdout, stderr)
	case "resolve":
		return runCatalogResolve(args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown catalog command %q\n", args[0])
		return 2
	}
}

func runCatalogImport(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("catalog import", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var dbPath, file string
	cmd.StringVar(&dbPath, "db", "", "SQLite catalog path (REQUIRED)")
	cmd.StringVar(&file, "file", "", "YAML module list to import (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if dbPath == "" || file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --db and --file are required")
		return 2
	}

	f, err := os.Open(file)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = f.Close() }()

	store, err := catalog.Open(dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = store.Close() }()

	n, err := store.ImportYAML(context.Background(), f)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	_, _ = fmt.Fprintf(stdout, "imported %d modules\n", n)
	return 0
}

func runCatalogResolve(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("catalog resolve", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var dbPath string
	cmd.StringVar(&dbPath, "db", "", "SQLite catalog path (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if dbPath == "" || cmd.NArg() == 0 {
		_, _ = fmt.Fprintln(stderr, "Error: --db and at least one module code are required")
		return 2
	}

	store, err := catalog.Open(dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = store.Close() }()

	modules, err := store.Resolve(context.Background(), cmd.Args())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	for _, m := range modules {
		_, _ = fmt.Fprintf(stdout, "%s %g\n", m.Code, m.Credits)
	}
	return 0
}
