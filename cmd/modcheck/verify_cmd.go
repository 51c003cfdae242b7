package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/modcheck/modcheck/pkg/block"
	"github.com/modcheck/modcheck/pkg/catalog"
	"github.com/modcheck/modcheck/pkg/loader"
	"github.com/modcheck/modcheck/pkg/module"
	"github.com/modcheck/modcheck/pkg/report"
)

// runVerifyCmd implements `modcheck verify`.
//
// Loads every requirement document under --requirements, verifies the plan
// in --plan against --block, and prints the explanation tree. With --json the
// full report is emitted as JSON instead.
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		requirementsDir string
		blockID         string
		planFile        string
		catalogPath     string
		jsonOutput      bool
	)
	cmd.StringVar(&requirementsDir, "requirements", "", "Directory of requirement documents (REQUIRED)")
	cmd.StringVar(&blockID, "block", "", "Block ID to verify against (REQUIRED)")
	cmd.StringVar(&planFile, "plan", "", "Plan file, one module per line (REQUIRED)")
	cmd.StringVar(&catalogPath, "catalog", "", "SQLite module catalog for resolving bare codes")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if requirementsDir == "" || blockID == "" || planFile == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --requirements, --block, and --plan are required")
		return 2
	}

	entries, bare, err := readPlanFile(planFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	var resolved module.List
	if len(bare) > 0 {
		if catalogPath == "" {
			_, _ = fmt.Fprintf(stderr, "Error: plan has bare codes %v but no --catalog given\n", bare)
			return 2
		}
		store, err := catalog.Open(catalogPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		defer func() { _ = store.Close() }()
		resolved, err = store.Resolve(context.Background(), bare)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}
	plan := buildPlan(entries, resolved)

	dir := block.NewDirectory()
	if err := loader.New(dir).LoadDir(requirementsDir); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	result, err := block.VerifyPlan(plan, dir, blockID)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	rep := report.New(blockID, result)
	if jsonOutput {
		data, err := rep.JSON()
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		_, _ = fmt.Fprintln(stdout, string(data))
	} else if err := rep.WriteText(stdout); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if !rep.Satisfied {
		return 1
	}
	return 0
}
