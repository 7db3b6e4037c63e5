package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
	"github.com/sqlinsight/sqlinsight/pkg/batch"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

func init() {
	color.NoColor = true
}

func sampleBatchResults() []batch.DocumentResult {
	a := analyzer.New(types.DialectGeneric)
	ctx := context.Background()
	return []batch.DocumentResult{
		{Name: "good.sql", Result: a.Analyze(ctx, "SELECT id FROM users;")},
		{Name: "bad.sql", Result: a.Analyze(ctx, "SELECT * FROM users;")},
		{Name: "hung.sql", Err: errors.New("analyze hung.sql: context deadline exceeded")},
	}
}

func TestWriteBatchResultsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBatchResults(&buf, "text", sampleBatchResults()))

	out := buf.String()
	assert.Contains(t, out, "==> good.sql")
	assert.Contains(t, out, "no issues found")
	assert.Contains(t, out, "==> bad.sql")
	assert.Contains(t, out, "performance.select-star")
	assert.Contains(t, out, "==> hung.sql")
	assert.Contains(t, out, "error: analyze hung.sql")
}

func TestWriteBatchResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBatchResults(&buf, "json", sampleBatchResults()))

	var entries []batchEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 3)

	assert.Equal(t, "good.sql", entries[0].Name)
	require.NotNil(t, entries[0].Result)
	assert.Empty(t, entries[0].Error)

	assert.Equal(t, "hung.sql", entries[2].Name)
	assert.Nil(t, entries[2].Result)
	assert.Contains(t, entries[2].Error, "deadline exceeded")
}

func TestWriteBatchResultsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBatchResults(&buf, "yaml", sampleBatchResults()))
	assert.Contains(t, buf.String(), "name: good.sql")
	assert.Contains(t, buf.String(), "name: hung.sql")
}

func TestWriteBatchResultsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeBatchResults(&buf, "markdown", sampleBatchResults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown batch output format")
}

func TestSeverityThreshold(t *testing.T) {
	newCmd := func(value string) *cobra.Command {
		c := &cobra.Command{}
		c.Flags().String("fail-on", "", "")
		if value != "" {
			require.NoError(t, c.Flags().Set("fail-on", value))
		}
		return c
	}

	tests := []struct {
		value   string
		want    types.Severity
		set     bool
		wantErr bool
	}{
		{value: "", set: false},
		{value: "high", want: types.SeverityHigh, set: true},
		{value: "CRITICAL", want: types.SeverityCritical, set: true},
		{value: "info", want: types.SeverityInfo, set: true},
		{value: "fatal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run("fail-on="+tt.value, func(t *testing.T) {
			got, set, err := severityThreshold(newCmd(tt.value))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), "unknown severity"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.set, set)
			if tt.set {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
