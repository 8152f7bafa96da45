package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rpgo/pension-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultRulesYAML []byte

var (
	defaultRulesOnce sync.Once
	defaultRules     *domain.RuleSet
	defaultRulesErr  error
)

// DefaultRules returns the embedded statutory tables. The returned value is
// shared and must not be modified.
func DefaultRules() (*domain.RuleSet, error) {
	defaultRulesOnce.Do(func() {
		defaultRules, defaultRulesErr = LoadRules(bytes.NewReader(defaultRulesYAML))
	})
	return defaultRules, defaultRulesErr
}

// MustDefaultRules panics if the embedded tables are broken.
func MustDefaultRules() *domain.RuleSet {
	rs, err := DefaultRules()
	if err != nil {
		panic(fmt.Sprintf("embedded rules: %v", err))
	}
	return rs
}

// LoadRules decodes and validates a rule set. Unknown keys are rejected so a
// misspelled table entry cannot silently fall back to a zero value.
func LoadRules(r io.Reader) (*domain.RuleSet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var rs domain.RuleSet
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("rules validation failed: %w", err)
	}
	return &rs, nil
}

// LoadRulesFile loads a rule set from disk. An empty path returns the defaults.
func LoadRulesFile(filename string) (*domain.RuleSet, error) {
	if filename == "" {
		return DefaultRules()
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	defer f.Close()
	return LoadRules(f)
}

// DefaultRulesYAML exposes the embedded document, e.g. for `example --rule-tables`.
func DefaultRulesYAML() []byte {
	return append([]byte(nil), defaultRulesYAML...)
}
