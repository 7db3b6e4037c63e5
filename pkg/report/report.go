// Package report renders analysis results for humans and machines. Every
// writer consumes a finished AnalysisResult and an io.Writer; nothing here
// re-runs analysis or touches the filesystem.
package report

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
)

// Supported format names.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Formats lists the supported format names in display order.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML, FormatMarkdown}
}

// Write renders res to w in the named format. An empty format means text.
func Write(w io.Writer, format string, res *analyzer.AnalysisResult) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText, "":
		return WriteText(w, res)
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatYAML, "yml":
		return WriteYAML(w, res)
	case FormatMarkdown, "md":
		return WriteMarkdown(w, res)
	default:
		return errors.Errorf("unknown report format %q (supported: %s)",
			format, strings.Join(Formats(), ", "))
	}
}
