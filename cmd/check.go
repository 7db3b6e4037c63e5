package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sqlinsight/sqlinsight/pkg/report"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <sql-file>",
	Short: "Analyze one SQL file",
	Long: `Analyze the SQL statements in a file: rule findings, the schema
catalog built from CREATE TABLE statements, and the relationship graph with
health scores.

The report goes to stdout in the chosen output format.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("dialect", "d", "", "SQL dialect (generic, mysql, postgres, sqlite, sqlserver, oracle)")
	checkCmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml, markdown)")
	checkCmd.Flags().String("fail-on", "", "exit non-zero when a finding reaches this severity (info, low, medium, high, critical)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	setupLogger()

	threshold, failOn, err := severityThreshold(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sqlFile := args[0]
	slog.Debug("reading SQL file", "file", sqlFile)
	data, err := os.ReadFile(sqlFile)
	if err != nil {
		return errors.Wrapf(err, "read SQL file %s", sqlFile)
	}

	d := flagDialect(cmd, cfg)
	slog.Debug("analyzing", "file", sqlFile, "dialect", d, "bytes", len(data))
	res := buildAnalyzer(d, cfg).Analyze(cmd.Context(), string(data))

	format, _ := cmd.Flags().GetString("output")
	if err := report.Write(os.Stdout, format, res); err != nil {
		return err
	}

	if failOn && res.WorstSeverity() >= threshold {
		os.Exit(1)
	}
	return nil
}

// severityThreshold parses the --fail-on flag. The bool reports whether the
// flag was given at all.
func severityThreshold(cmd *cobra.Command) (types.Severity, bool, error) {
	s, _ := cmd.Flags().GetString("fail-on")
	if s == "" {
		return 0, false, nil
	}
	parsed := types.ParseSeverity(s)
	if !strings.EqualFold(parsed.String(), strings.TrimSpace(s)) {
		return 0, false, errors.Errorf("unknown severity %q for --fail-on", s)
	}
	return parsed, true, nil
}
