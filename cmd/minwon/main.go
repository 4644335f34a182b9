package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var persistentFlags = []string{
	"config", "lexicon", "db", "llm-base-url", "llm-model", "llm-api-key", "log-level",
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:          "minwon",
		Short:        "Generate short titles for citizen complaints and route them to the responsible agency",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine
			_ = godotenv.Load()
			return nil
		},
	}

	bindFlags(root, v)

	root.AddCommand(
		newTitleCmd(v),
		newClassifyCmd(v),
		newBatchCmd(v),
		newReplCmd(v),
		newServeCmd(v),
		newStatsCmd(v),
	)
	return root
}

// bindFlags registers the persistent flags on root and binds them, and their
// MINWON_* environment variables, to v.
func bindFlags(root *cobra.Command, v *viper.Viper) {
	flags := root.PersistentFlags()
	flags.String("config", "", "keyword sets YAML file (built-in sets if empty)")
	flags.String("lexicon", "", "analyzer lexicon YAML file")
	flags.String("db", "", "SQLite database path (in-memory store if empty)")
	flags.String("llm-base-url", "", "OpenAI-compatible API base URL for classification")
	flags.String("llm-model", "", "model used for classification")
	flags.String("llm-api-key", "", "API key for the classification endpoint")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	for _, name := range persistentFlags {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	v.SetEnvPrefix("minwon")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}
