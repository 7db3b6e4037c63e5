package report

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
)

// WriteJSON renders the result as indented JSON, one document per call.
func WriteJSON(w io.Writer, res *analyzer.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(res), "encode json report")
}
