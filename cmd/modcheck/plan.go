package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/modcheck/modcheck/pkg/module"
)

// planEntry is one plan line: "CODE CREDITS", or a bare "CODE" to be
// resolved against the catalog.
type planEntry struct {
	code       string
	credits    float64
	hasCredits bool
}

// readPlanFile parses a plan file. Blank lines and #-comments are skipped.
// bare collects the codes that still need catalog resolution, in plan order.
func readPlanFile(path string) (entries []planEntry, bare []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read plan: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 1:
			entries = append(entries, planEntry{code: fields[0]})
			bare = append(bare, fields[0])
		case 2:
			credits, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("read plan: line %d: bad credits %q", lineNo, fields[1])
			}
			entries = append(entries, planEntry{code: fields[0], credits: credits, hasCredits: true})
		default:
			return nil, nil, fmt.Errorf("read plan: line %d: expected CODE [CREDITS]", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read plan: %w", err)
	}
	return entries, bare, nil
}

// buildPlan assembles the module list in plan order, taking credits for bare
// codes from resolved.
func buildPlan(entries []planEntry, resolved module.List) module.List {
	byCode := make(map[string]module.Module, len(resolved))
	for _, m := range resolved {
		byCode[m.Code] = m
	}
	plan := make(module.List, 0, len(entries))
	for _, e := range entries {
		if e.hasCredits {
			plan = append(plan, module.Module{Code: e.code, Credits: e.credits})
			continue
		}
		plan = append(plan, byCode[e.code])
	}
	return plan
}
