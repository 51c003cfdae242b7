// Package report wraps a satisfier result into a shareable verification
// report and renders it for humans (indented tree) or tooling (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modcheck/modcheck/pkg/satisfier"
)

// Report is one plan verification outcome.
type Report struct {
	ID          string            `json:"id"`
	BlockID     string            `json:"blockId"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Satisfied   bool              `json:"isSatisfied"`
	Result      *satisfier.Result `json:"result"`
}

// New builds a report for the verification of blockID.
func New(blockID string, res *satisfier.Result) *Report {
	return &Report{
		ID:          uuid.NewString(),
		BlockID:     blockID,
		GeneratedAt: time.Now().UTC(),
		Satisfied:   res.Satisfied,
		Result:      res,
	}
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteText renders the result tree as an indented explanation, one node per
// line, marking satisfied nodes with "ok" and failed ones with "!!".
func (r *Report) WriteText(w io.Writer) error {
	verdict := "SATISFIED"
	if !r.Satisfied {
		verdict = "NOT SATISFIED"
	}
	if _, err := fmt.Fprintf(w, "%s: %s (report %s)\n", r.BlockID, verdict, r.ID); err != nil {
		return err
	}
	return writeNode(w, r.Result, 0)
}

func writeNode(w io.Writer, res *satisfier.Result, depth int) error {
	mark := "ok"
	if !res.Satisfied {
		mark = "!!"
	}
	line := fmt.Sprintf("%s[%s] %s", strings.Repeat("  ", depth), mark, res.Name)
	if len(res.Added) > 0 {
		line += fmt.Sprintf(" +%v", res.Added.Codes())
	}
	if len(res.Removed) > 0 {
		line += fmt.Sprintf(" -%v", res.Removed.Codes())
	}
	if res.Message != "" {
		line += ": " + res.Message
	}
	if res.Info != "" {
		line += fmt.Sprintf(" (%s)", res.Info)
	}
	for _, info := range res.Infos {
		line += fmt.Sprintf(" (%s)", info)
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, child := range res.Children {
		if err := writeNode(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
