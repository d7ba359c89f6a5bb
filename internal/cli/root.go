package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	modelName  string
	logLevel   string
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "docsum",
	Short: "Summarize documents with language models",
	Long: `docsum summarizes text, Markdown and PDF documents with a choice of
strategies (zero-shot, retrieval-augmented, map-reduce) and providers.
Input is read from a file argument or from stdin.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to YAML config (default ./config.yaml or ~/.config/docsum/config.yaml)")
	pf.StringVar(&modelName, "model", "", "completion model, overrides the config")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

// Execute runs the root command until completion or an interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
