package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
	"github.com/sqlinsight/sqlinsight/pkg/config"
	"github.com/sqlinsight/sqlinsight/pkg/dialect"
	"github.com/sqlinsight/sqlinsight/pkg/logger"
	"github.com/sqlinsight/sqlinsight/pkg/rules"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sqlinsight",
	Short: "Static analysis for SQL scripts",
	Long: `sqlinsight analyzes SQL scripts without executing them: rule-based
findings with confidence scores, a schema catalog built from CREATE TABLE
statements, and a relationship graph with inferred foreign keys, creation
order and schema health scores.

It supports multiple database dialects including MySQL, PostgreSQL,
SQLite, SQL Server, and Oracle.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sqlinsight.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".sqlinsight" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sqlinsight")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// A missing config file is fine; flags and defaults cover everything.
	_ = viper.ReadInConfig()
}

// setupLogger installs the CLI slog handler at the level the verbosity flags
// ask for. Warnings and errors always show; --verbose adds info, --debug
// adds debug.
func setupLogger() {
	level := slog.LevelWarn
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	} else if viper.GetBool("verbose") {
		level = slog.LevelInfo
	}
	slog.SetDefault(logger.NewCLI(level).GetSlogLogger())
}

// loadConfig returns the analyzer configuration: the file named by --config,
// the file viper discovered, or the defaults. An explicit --config that fails
// to parse is an error; a discovered file that fails to parse is skipped with
// a warning.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	if path := viper.ConfigFileUsed(); path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			slog.Warn("ignoring unreadable config file", "path", path, "error", err)
			return config.DefaultConfig(), nil
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

// flagDialect resolves the dialect for a command: an explicit --dialect flag
// wins, otherwise the config file's dialect applies.
func flagDialect(cmd *cobra.Command, cfg *config.Config) types.Dialect {
	if s, _ := cmd.Flags().GetString("dialect"); s != "" {
		return types.ParseDialect(s)
	}
	return cfg.Dialect
}

// buildAnalyzer assembles an analyzer for d with the config's rule settings
// and lexicon applied.
func buildAnalyzer(d types.Dialect, cfg *config.Config) *analyzer.Analyzer {
	dreg := dialect.DefaultRegistry()
	reg, err := rules.DefaultRegistry(dreg.Lookup(d))
	if err != nil {
		slog.Warn("some dialect patterns were skipped", "dialect", d, "error", err)
	}
	return analyzer.New(d,
		analyzer.WithRegistry(cfg.ApplyRules(reg)),
		analyzer.WithLexicon(cfg.ActiveLexicon()),
	)
}
