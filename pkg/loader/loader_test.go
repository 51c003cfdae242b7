package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modcheck/modcheck/pkg/block"
	"github.com/modcheck/modcheck/pkg/module"
)

const csDocument = `
name: Computer Science
ay: 2023/2024
isSelectable: true
match: "*"
satisfy:
  and:
    - found
    - core
found:
  name: Foundation
  match: ["CS1101S", "CS1231S"]
  satisfy:
    mc: ">=8"
core:
  name: Core
  match: CS2*
  satisfy:
    mc: ">=8"
breadth:
  name: Breadth
  match:
    pattern: GE*
    exclude: GEX*
    info: any GE module counts
`

func TestParseDocumentDecodesBlocks(t *testing.T) {
	b, err := ParseDocument([]byte(csDocument))
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", b.Name)
	assert.Equal(t, "2023/2024", b.AcademicYear)
	assert.True(t, b.Selectable)
	assert.NotNil(t, b.Match)
	assert.NotNil(t, b.Satisfy)
	require.Len(t, b.Subblocks, 3)
	assert.NotNil(t, b.Subblocks["found"].Match)
	assert.NotNil(t, b.Subblocks["breadth"].Match)
}

func TestRegisterAndVerifyEndToEnd(t *testing.T) {
	dir := block.NewDirectory()
	require.NoError(t, New(dir).Register("cs", []byte(csDocument)))
	assert.Equal(t, []string{"cs"}, dir.Selectable())

	plan := module.List{
		{Code: "CS1101S", Credits: 4},
		{Code: "CS1231S", Credits: 4},
		{Code: "CS2100", Credits: 4},
		{Code: "CS2040S", Credits: 4},
	}
	res, err := block.VerifyPlan(plan, dir, "cs")
	require.NoError(t, err)
	assert.True(t, res.Satisfied)

	short := module.List{{Code: "CS1101S", Credits: 4}}
	res, err = block.VerifyPlan(short, dir, "cs")
	require.NoError(t, err)
	assert.False(t, res.Satisfied)
}

func TestImplicitSugar(t *testing.T) {
	doc := `
a:
  match:
    - CS1101S
    - MA1521
b:
  match: "*"
  satisfy:
    - mc: ">=4"
    - mc: "<=20"
`
	b, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	// Array of match rules is an implicit or.
	assert.Equal(t, 2, len(b.Subblocks))
	assert.NotNil(t, b.Subblocks["a"].Match)
	// Array of satisfy rules is an implicit and.
	assert.Equal(t, block.SatisfyAnd, b.Subblocks["b"].Satisfy.Kind())
}

func TestSchemaRejectsMalformedDocuments(t *testing.T) {
	cases := map[string]string{
		"numeric match":       "a:\n  match: 42\n",
		"bad pattern":         "a:\n  match: cs2100\n",
		"bad inequality":      "a:\n  satisfy:\n    mc: \"8\"\n",
		"slash in block key":  "a/b:\n  match: CS2*\n",
		"unknown rule keys":   "a:\n  match:\n    nor: [CS2*]\n",
		"non-mapping subnode": "a: 12\n",
	}
	for name, doc := range cases {
		_, err := ParseDocument([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidDocument, name)
	}
}

func TestCelMatchRule(t *testing.T) {
	doc := `
heavy:
  match:
    cel: "credits >= 6.0"
  satisfy:
    mc: ">=6"
`
	dir := block.NewDirectory()
	require.NoError(t, New(dir).Register("x", []byte(doc)))

	res, err := block.VerifyPlan(module.List{
		{Code: "CS3203", Credits: 8},
		{Code: "GER1000", Credits: 4},
	}, dir, "x/heavy")
	require.NoError(t, err)
	assert.True(t, res.Satisfied)
	assert.Equal(t, []string{"CS3203"}, res.Assigned.Codes())
}

func TestRequiresGate(t *testing.T) {
	ok := "requires: \">=1.0.0\"\na:\n  match: CS2*\n"
	_, err := ParseDocument([]byte(ok))
	assert.NoError(t, err)

	tooNew := "requires: \">=2.0.0\"\na:\n  match: CS2*\n"
	_, err = ParseDocument([]byte(tooNew))
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestLoadDirRegistersByFileStem(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "cs.yaml"), []byte(csDocument), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "notes.txt"), []byte("ignored"), 0o644))

	dir := block.NewDirectory()
	require.NoError(t, New(dir).LoadDir(tmp))
	_, err := dir.Find("", "cs/core")
	assert.NoError(t, err)
}

func TestDuplicatePrefixRejected(t *testing.T) {
	dir := block.NewDirectory()
	l := New(dir)
	require.NoError(t, l.Register("cs", []byte("a:\n  match: CS2*\n")))
	err := l.Register("cs", []byte("b:\n  match: MA1*\n"))
	assert.ErrorIs(t, err, block.ErrDuplicateBlock)
}
