// Package loader reads requirement documents (YAML) and registers them into
// a block directory. Documents are shape-validated against a JSON Schema and
// version-gated before any rule is compiled, so the engine only ever sees
// well-formed tagged-union rule trees.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/modcheck/modcheck/pkg/block"
)

// EngineVersion is checked against a document's optional "requires"
// constraint at load time.
const EngineVersion = "1.0.0"

// Loader-level construction errors.
var (
	ErrInvalidDocument = errors.New("loader: invalid requirement document")
	ErrIncompatible    = errors.New("loader: document requires an incompatible engine version")
)

var engineVersion = semver.MustParse(EngineVersion)

// Loader registers requirement documents into a directory.
type Loader struct {
	dir *block.Directory
	log *slog.Logger
}

// New returns a loader targeting dir.
func New(dir *block.Directory) *Loader {
	return &Loader{
		dir: dir,
		log: slog.Default().With("component", "loader"),
	}
}

// Directory returns the directory this loader populates.
func (l *Loader) Directory() *block.Directory { return l.dir }

// LoadDir loads every *.yaml / *.yml requirement document in dirPath. Each
// document is registered under its file stem as prefix.
func (l *Loader) LoadDir(dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("loader: read dir %s: %w", dirPath, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := l.LoadFile(filepath.Join(dirPath, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile loads a single requirement document and registers it under the
// file's stem (base name without extension).
func (l *Loader) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: read %s: %w", path, err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := l.Register(stem, data); err != nil {
		return fmt.Errorf("loader: load %s: %w", path, err)
	}
	l.log.Info("requirement document loaded", "path", path, "prefix", stem)
	return nil
}

// Register validates, decodes, and registers one document under prefix.
func (l *Loader) Register(prefix string, data []byte) error {
	b, err := ParseDocument(data)
	if err != nil {
		return err
	}
	return l.dir.AddBlock(prefix, b)
}

// ParseDocument validates a YAML requirement document against the DSL schema
// and decodes it into a block tree. All rule compilation happens here;
// malformed patterns, inequalities, or CEL expressions fail the load.
func ParseDocument(data []byte) (*block.Block, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrInvalidDocument, err)
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document root is not a mapping", ErrInvalidDocument)
	}

	s, err := documentSchema()
	if err != nil {
		return nil, fmt.Errorf("loader: schema compile: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if requires, ok := doc["requires"].(string); ok {
		constraint, err := semver.NewConstraint(requires)
		if err != nil {
			return nil, fmt.Errorf("%w: requires %q: %v", ErrInvalidDocument, requires, err)
		}
		if !constraint.Check(engineVersion) {
			return nil, fmt.Errorf("%w: requires %q, engine is %s", ErrIncompatible, requires, EngineVersion)
		}
	}

	return decodeBlock(doc, "")
}
