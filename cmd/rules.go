package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the active rules",
	Long: `List the rules the analyzer would run for the effective dialect,
after config overrides: built-in rules plus the dialect's extra patterns,
minus anything the config disabled.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringP("dialect", "d", "", "SQL dialect (generic, mysql, postgres, sqlite, sqlserver, oracle)")
}

func runRules(cmd *cobra.Command, _ []string) error {
	setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	d := flagDialect(cmd, cfg)
	active := buildAnalyzer(d, cfg).Rules()

	fmt.Fprintf(os.Stdout, "%d rules active for %s\n\n", len(active), d)
	for _, r := range active {
		fmt.Fprintf(os.Stdout, "%-34s %-9s %-14s %s\n", r.ID, r.Severity, r.Category, r.Message)
	}
	return nil
}
