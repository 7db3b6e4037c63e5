package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
	"github.com/sqlinsight/sqlinsight/pkg/batch"
	"github.com/sqlinsight/sqlinsight/pkg/logger"
	"github.com/sqlinsight/sqlinsight/pkg/report"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <sql-file>...",
	Short: "Analyze many SQL files in parallel",
	Long: `Analyze several SQL files at once with bounded concurrency and a
per-file timeout. Results come out in input order; a file that times out is
reported as an error without stopping the rest of the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("dialect", "d", "", "SQL dialect (generic, mysql, postgres, sqlite, sqlserver, oracle)")
	batchCmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	batchCmd.Flags().IntP("concurrency", "c", 0, "files analyzed in parallel (default: config, then CPU count)")
	batchCmd.Flags().Duration("timeout", 0, "per-file analysis timeout (default: config)")
	batchCmd.Flags().String("fail-on", "", "exit non-zero when any file has a finding at this severity (info, low, medium, high, critical)")
	batchCmd.Flags().Bool("no-progress", false, "disable the progress bar")
}

func runBatch(cmd *cobra.Command, args []string) error {
	setupLogger()

	threshold, failOn, err := severityThreshold(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	docs := make([]batch.Document, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read SQL file %s", path)
		}
		docs = append(docs, batch.Document{Name: path, SQL: string(data)})
	}

	d := flagDialect(cmd, cfg)
	a := buildAnalyzer(d, cfg)

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Batch.Concurrency
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		timeout = cfg.Batch.Timeout.Std()
	}
	slog.Debug("running batch", "files", len(docs), "dialect", d,
		"concurrency", concurrency, "timeout", timeout)

	opts := []batch.RunnerOption{
		batch.WithConcurrency(concurrency),
		batch.WithTimeout(timeout),
	}

	var bar *progressbar.ProgressBar
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if !noProgress && logger.IsTerminal(os.Stderr) {
		bar = newProgressBar(len(docs))
		opts = append(opts, batch.WithProgress(func(batch.DocumentResult) {
			_ = bar.Add(1)
		}))
	}

	results, err := batch.NewRunner(a, opts...).Run(cmd.Context(), docs)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return errors.Wrap(err, "batch cancelled")
	}

	for i := range results {
		if results[i].Result != nil {
			results[i].Result.ID = uuid.NewString()
		}
	}

	format, _ := cmd.Flags().GetString("output")
	if err := writeBatchResults(os.Stdout, format, results); err != nil {
		return err
	}

	// A file that never produced a result fails the run regardless of
	// --fail-on; findings only fail it when they reach the threshold.
	failed := false
	for _, res := range results {
		if res.Err != nil {
			failed = true
		}
		if failOn && res.Result != nil && res.Result.WorstSeverity() >= threshold {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

// batchEntry is one file's slot in the aggregated json/yaml output.
type batchEntry struct {
	Name   string                   `json:"name" yaml:"name"`
	Error  string                   `json:"error,omitempty" yaml:"error,omitempty"`
	Result *analyzer.AnalysisResult `json:"result,omitempty" yaml:"result,omitempty"`
}

// writeBatchResults renders the batch: per-file sections for text, one
// aggregated document for json and yaml.
func writeBatchResults(w io.Writer, format string, results []batch.DocumentResult) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case report.FormatText, "":
		for _, res := range results {
			fmt.Fprintf(w, "==> %s\n", color.New(color.Bold).Sprint(res.Name))
			if res.Err != nil {
				fmt.Fprintf(w, "%s\n\n", color.RedString("error: %v", res.Err))
				continue
			}
			if err := report.Write(w, report.FormatText, res.Result); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
		return nil
	case report.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(batchEntries(results)), "encode batch json")
	case report.FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(batchEntries(results)); err != nil {
			_ = enc.Close()
			return errors.Wrap(err, "encode batch yaml")
		}
		return errors.Wrap(enc.Close(), "encode batch yaml")
	default:
		return errors.Errorf("unknown batch output format %q (supported: text, json, yaml)", format)
	}
}

func batchEntries(results []batch.DocumentResult) []batchEntry {
	entries := make([]batchEntry, len(results))
	for i, res := range results {
		entries[i] = batchEntry{Name: res.Name, Result: res.Result}
		if res.Err != nil {
			entries[i].Error = res.Err.Error()
		}
	}
	return entries
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionSetWidth(18),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
	)
}
