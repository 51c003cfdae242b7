package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `
name: Computer Science Core
isSelectable: true
match: CS2*
satisfy:
  mc: ">=8"
`

func writeFixtures(t *testing.T, plan string) (reqDir, planFile string) {
	t.Helper()
	tmp := t.TempDir()
	reqDir = filepath.Join(tmp, "requirements")
	require.NoError(t, os.Mkdir(reqDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(reqDir, "cs.yaml"), []byte(testDocument), 0o644))
	planFile = filepath.Join(tmp, "plan.txt")
	require.NoError(t, os.WriteFile(planFile, []byte(plan), 0o644))
	return reqDir, planFile
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Run(append([]string{"modcheck"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVerifySatisfiedPlan(t *testing.T) {
	reqDir, planFile := writeFixtures(t, "# my plan\nCS2100 4\nCS2040S 4\nGER1000 4\n")

	code, stdout, stderr := runCLI("verify",
		"--requirements", reqDir, "--block", "cs", "--plan", planFile)
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "cs: SATISFIED")
}

func TestVerifyUnsatisfiedPlanExitsOne(t *testing.T) {
	reqDir, planFile := writeFixtures(t, "CS2100 4\n")

	code, stdout, _ := runCLI("verify",
		"--requirements", reqDir, "--block", "cs", "--plan", planFile)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "cs: NOT SATISFIED")
	assert.Contains(t, stdout, "modules do not meet minimum MC requirement of 8")
}

func TestVerifyJSONOutput(t *testing.T) {
	reqDir, planFile := writeFixtures(t, "CS2100 4\nCS2040S 4\n")

	code, stdout, _ := runCLI("verify",
		"--requirements", reqDir, "--block", "cs", "--plan", planFile, "--json")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, `"isSatisfied": true`)
}

func TestVerifyUnknownBlockExitsTwo(t *testing.T) {
	reqDir, planFile := writeFixtures(t, "CS2100 4\n")

	code, _, stderr := runCLI("verify",
		"--requirements", reqDir, "--block", "nope", "--plan", planFile)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "no such block")
}

func TestVerifyBareCodesNeedCatalog(t *testing.T) {
	reqDir, planFile := writeFixtures(t, "CS2100\n")

	code, _, stderr := runCLI("verify",
		"--requirements", reqDir, "--block", "cs", "--plan", planFile)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "no --catalog")
}

func TestVerifyResolvesBareCodesFromCatalog(t *testing.T) {
	reqDir, planFile := writeFixtures(t, "CS2100\nCS2040S 4\n")
	tmp := t.TempDir()

	modulesFile := filepath.Join(tmp, "modules.yaml")
	require.NoError(t, os.WriteFile(modulesFile,
		[]byte("- code: CS2100\n  credits: 4\n"), 0o644))
	dbPath := filepath.Join(tmp, "catalog.db")

	code, stdout, stderr := runCLI("catalog", "import", "--db", dbPath, "--file", modulesFile)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "imported 1 modules")

	code, stdout, stderr = runCLI("verify",
		"--requirements", reqDir, "--block", "cs", "--plan", planFile,
		"--catalog", dbPath)
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "cs: SATISFIED")

	code, stdout, _ = runCLI("catalog", "resolve", "--db", dbPath, "CS2100")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "CS2100 4")
}

func TestBlocksListsSelectable(t *testing.T) {
	reqDir, _ := writeFixtures(t, "")

	code, stdout, stderr := runCLI("blocks", "--requirements", reqDir)
	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, "cs\n", stdout)
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := runCLI("frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown command")
}
