package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
)

// WriteMarkdown renders the result as a Markdown document with tables for
// findings, schema relationships and health, suitable for CI job summaries.
func WriteMarkdown(w io.Writer, res *analyzer.AnalysisResult) error {
	out := bufio.NewWriter(w)

	fmt.Fprintln(out, "# SQL Analysis Report")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Dialect:** %s · **Findings:** %d\n", res.Dialect, res.Summary.Total)
	if res.ID != "" {
		fmt.Fprintf(out, "**Analysis:** `%s`\n", res.ID)
	}
	fmt.Fprintln(out)

	if len(res.Findings) > 0 {
		fmt.Fprintln(out, "## Findings")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| Severity | Line | Rule | Message | Confidence |")
		fmt.Fprintln(out, "|---|---|---|---|---|")
		for _, f := range res.Findings {
			fmt.Fprintf(out, "| %s | %d | `%s` | %s | %.2f |\n",
				f.Severity, f.Location.Line, f.ID, mdEscape(f.Message), f.Confidence)
		}
		fmt.Fprintln(out)
	} else {
		fmt.Fprintln(out, "No issues found.")
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "## Category scores")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s\n\n", scoreLine(res.CategoryScores))

	if res.Schema != nil && len(res.Tables) > 0 {
		writeMarkdownSchema(out, res)
	}

	return out.Flush()
}

func writeMarkdownSchema(out io.Writer, res *analyzer.AnalysisResult) {
	s := res.Schema

	fmt.Fprintln(out, "## Tables")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| Table | Columns | Primary Key |")
	fmt.Fprintln(out, "|---|---|---|")
	for _, t := range res.Tables {
		fmt.Fprintf(out, "| `%s` | %d | %s |\n",
			t.Name, len(t.Columns), strings.Join(t.PrimaryKey, ", "))
	}
	fmt.Fprintln(out)

	if len(s.Relationships) > 0 {
		fmt.Fprintln(out, "## Relationships")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| From | To | Kind | Source | Confidence |")
		fmt.Fprintln(out, "|---|---|---|---|---|")
		for _, r := range s.Relationships {
			src := "inferred"
			if r.Explicit {
				src = "declared"
			}
			fmt.Fprintf(out, "| `%s.%s` | `%s.%s` | %s | %s | %.2f |\n",
				r.FromTable, r.FromColumn, r.ToTable, r.ToColumn, r.Kind, src, r.Confidence)
		}
		fmt.Fprintln(out)
	}

	if len(s.MissingTables) > 0 {
		fmt.Fprintln(out, "## Suggested tables")
		fmt.Fprintln(out)
		for _, mt := range s.MissingTables {
			fmt.Fprintf(out, "- `%s` (confidence %.2f): %s\n", mt.Name, mt.Confidence, mdEscape(mt.Reason))
		}
		fmt.Fprintln(out)
	}

	if len(s.CreationOrder) > 0 {
		fmt.Fprintf(out, "**Creation order:** %s\n\n", strings.Join(s.CreationOrder, " → "))
	}
	if len(s.Unordered) > 0 {
		fmt.Fprintf(out, "**Unordered (cyclic):** %s\n\n", strings.Join(s.Unordered, ", "))
	}

	fmt.Fprintln(out, "## Health")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| Integrity | Normalization | Performance | Overall |")
	fmt.Fprintln(out, "|---|---|---|---|")
	fmt.Fprintf(out, "| %.1f | %.1f | %.1f | **%.1f** |\n",
		s.Health.Integrity, s.Health.Normalization, s.Health.Performance, s.Health.Overall)
	fmt.Fprintln(out)
}

// mdEscape keeps free-text cells from breaking the table layout.
func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
