package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlinsight/sqlinsight/pkg/graph"
	"github.com/sqlinsight/sqlinsight/pkg/rules"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, types.DialectGeneric, cfg.Dialect)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Batch.Timeout.Std())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Nil(t, cfg.Lexicon)
}

func TestLoadFromFileYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
dialect: postgres
rules:
  - id: performance.select-star
    disabled: true
  - id: logic.missing-where
    severity: MEDIUM
batch:
  concurrency: 8
  timeout: 45s
server:
  addr: ":9000"
lexicon:
  stems:
    - stem: invoice
      satellites: [line]
  auditThreshold: 5
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, types.DialectPostgres, cfg.Dialect)
	require.Len(t, cfg.Rules, 2)
	assert.True(t, cfg.Rules[0].Disabled)
	assert.Equal(t, "MEDIUM", cfg.Rules[1].Severity)

	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, 45*time.Second, cfg.Batch.Timeout.Std())
	assert.Equal(t, ":9000", cfg.Server.Addr)

	require.NotNil(t, cfg.Lexicon)
	require.Len(t, cfg.Lexicon.Stems, 1)
	assert.Equal(t, "invoice", cfg.Lexicon.Stems[0].Stem)
	assert.Equal(t, 5, cfg.Lexicon.AuditThreshold)
}

func TestLoadFromFileJSON(t *testing.T) {
	path := writeFile(t, "config.json",
		`{"dialect": "mysql", "batch": {"concurrency": 2, "timeout": "10s"}}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.DialectMySQL, cfg.Dialect)
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.Batch.Timeout.Std())
	// Unset fields keep their defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "dialect: sqlite\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.DialectSQLite, cfg.Dialect)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Batch.Timeout.Std())
}

func TestLoadFromFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml or json", ":::: {{{{"},
		{"bad duration", "batch:\n  timeout: eventually\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.yaml", tt.content)
			_, err := LoadFromFile(path)
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestApplyRules(t *testing.T) {
	reg := rules.NewRegistry(
		rules.Rule{ID: "a", Severity: types.SeverityLow},
		rules.Rule{ID: "b", Severity: types.SeverityHigh},
		rules.Rule{ID: "c", Severity: types.SeverityMedium},
	)
	cfg := &Config{Rules: []RuleSetting{
		{ID: "a", Disabled: true},
		{ID: "b", Severity: "CRITICAL"},
		{ID: "does-not-exist", Disabled: true},
	}}

	out := cfg.ApplyRules(reg).Rules()
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, types.SeverityCritical, out[0].Severity)
	assert.Equal(t, "c", out[1].ID)
	assert.Equal(t, types.SeverityMedium, out[1].Severity)

	// The source registry is untouched.
	assert.Len(t, reg.Rules(), 3)
	assert.Equal(t, types.SeverityHigh, reg.Rules()[1].Severity)
}

func TestApplyRulesNoSettings(t *testing.T) {
	reg := rules.NewRegistry(rules.Rule{ID: "a"}, rules.Rule{ID: "b"})
	out := DefaultConfig().ApplyRules(reg).Rules()
	assert.Len(t, out, 2)
}

func TestActiveLexicon(t *testing.T) {
	cfg := DefaultConfig()
	lex := cfg.ActiveLexicon()
	assert.NotEmpty(t, lex.Stems, "default lexicon when none configured")

	cfg.Lexicon = &graph.Lexicon{
		Stems: []graph.StemRule{{Stem: "invoice", Satellites: []string{"line"}}},
	}
	got := cfg.ActiveLexicon()
	require.Len(t, got.Stems, 1)
	assert.Equal(t, "invoice", got.Stems[0].Stem)
}
