// Command modcheck verifies course-module plans against hierarchical
// requirement documents.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/modcheck/modcheck/pkg/loader"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint, split out for testing.
//
// Exit codes:
//
//	0 = plan satisfied (or command succeeded)
//	1 = plan not satisfied
//	2 = runtime error / bad usage
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}
	switch args[1] {
	case "verify":
		return runVerifyCmd(args[2:], stdout, stderr)
	case "blocks":
		return runBlocksCmd(args[2:], stdout, stderr)
	case "catalog":
		return runCatalogCmd(args[2:], stdout, stderr)
	case "version":
		_, _ = fmt.Fprintln(stdout, "modcheck "+loader.EngineVersion)
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n", args[1])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprint(w, `usage: modcheck <command> [flags]

commands:
  verify    verify a module plan against a requirement block
  blocks    list selectable requirement blocks
  catalog   maintain the module catalog (import, resolve)
  version   print the engine version
`)
}
