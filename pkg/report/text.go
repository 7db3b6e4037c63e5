package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// WriteText renders a severity-colored console report: findings first, then
// the schema section when tables were declared, then the summary footer.
func WriteText(w io.Writer, res *analyzer.AnalysisResult) error {
	out := bufio.NewWriter(w)

	if res.ID != "" {
		fmt.Fprintf(out, "analysis %s (%s)\n\n", res.ID, res.Dialect)
	}

	if len(res.Findings) == 0 {
		fmt.Fprintln(out, color.GreenString("✔ no issues found"))
	} else {
		for _, f := range res.Findings {
			writeFinding(out, f)
		}
	}

	if res.Schema != nil && len(res.Tables) > 0 {
		writeSchema(out, res)
	}

	fmt.Fprintf(out, "\n%s\n", res.String())
	fmt.Fprintf(out, "scores: %s\n", scoreLine(res.CategoryScores))
	return out.Flush()
}

func writeFinding(out io.Writer, f types.Finding) {
	loc := fmt.Sprintf("line %d", f.Location.Line)
	if f.Location.ColumnStart > 0 {
		loc += fmt.Sprintf(", col %d", f.Location.ColumnStart)
	}
	fmt.Fprintf(out, "%s: [%s] %s (%s, confidence %.2f)\n",
		loc, severityColor(f.Severity).Sprint(f.Severity), f.Message, f.ID, f.Confidence)

	if strings.TrimSpace(f.Location.LineText) != "" {
		fmt.Fprintf(out, "\t%s\n", color.CyanString(strings.TrimSpace(f.Location.LineText)))
	}
	if f.Fix != nil {
		fmt.Fprintf(out, "\tfix: %s\n", f.Fix.Replacement)
	}
	fmt.Fprintln(out)
}

func writeSchema(out io.Writer, res *analyzer.AnalysisResult) {
	s := res.Schema
	fmt.Fprintf(out, "schema: %d tables, %d relationships\n", len(res.Tables), len(s.Relationships))

	for _, r := range s.Relationships {
		src := "inferred"
		if r.Explicit {
			src = "declared"
		}
		fmt.Fprintf(out, "  %s.%s -> %s.%s (%s, %s, confidence %.2f)\n",
			color.CyanString(r.FromTable), r.FromColumn,
			color.CyanString(r.ToTable), r.ToColumn,
			r.Kind, src, r.Confidence)
	}

	for _, mt := range s.MissingTables {
		fmt.Fprintf(out, "  missing table %s (confidence %.2f): %s\n",
			color.YellowString(mt.Name), mt.Confidence, mt.Reason)
	}
	for _, sg := range s.Suggestions {
		fmt.Fprintf(out, "  %s: %s\n", color.CyanString(sg.Table), sg.Message)
	}

	if len(s.CreationOrder) > 0 {
		fmt.Fprintf(out, "  creation order: %s\n", strings.Join(s.CreationOrder, " -> "))
	}
	if len(s.Unordered) > 0 {
		fmt.Fprintf(out, "  unordered (cyclic): %s\n", color.RedString(strings.Join(s.Unordered, ", ")))
	}
	for _, group := range s.CyclicGroups {
		fmt.Fprintf(out, "  cycle: %s\n", strings.Join(group, " <-> "))
	}

	fmt.Fprintf(out, "  health: integrity %.1f · normalization %.1f · performance %.1f · overall %s\n",
		s.Health.Integrity, s.Health.Normalization, s.Health.Performance,
		healthColor(s.Health.Overall).Sprintf("%.1f", s.Health.Overall))
}

func severityColor(s types.Severity) *color.Color {
	switch s {
	case types.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case types.SeverityHigh:
		return color.New(color.FgRed)
	case types.SeverityMedium:
		return color.New(color.FgYellow)
	case types.SeverityLow:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgWhite)
	}
}

func healthColor(v float64) *color.Color {
	switch {
	case v >= 80:
		return color.New(color.FgGreen)
	case v >= 50:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// scoreLine renders the category scores in declaration order so the footer
// is stable run to run.
func scoreLine(scores map[string]int) string {
	parts := make([]string, 0, len(scores))
	for _, c := range types.Categories() {
		if v, ok := scores[c.String()]; ok {
			parts = append(parts, fmt.Sprintf("%s %d", c, v))
		}
	}
	return strings.Join(parts, " · ")
}
