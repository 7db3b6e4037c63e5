package report

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
)

// WriteYAML renders the result as a YAML document.
func WriteYAML(w io.Writer, res *analyzer.AnalysisResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		enc.Close()
		return errors.Wrap(err, "encode yaml report")
	}
	return errors.Wrap(enc.Close(), "encode yaml report")
}
