// internal/cli/run.go
package llmeval

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/experiment"
	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/metrics"
	"github.com/anastev982/llm-eval-framework/internal/providerfactory"
)

// runCmd runs an evaluation experiment.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate one or more models",
	Long: `The 'run' command evaluates every configured model on the selected task(s),
prints a summary, and writes the HTML report, error logs and experiment snapshot
to <logsDir>/experiments/<experimentId>/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExperiment(cmd, getConfig())
	},
}

func runExperiment(cmd *cobra.Command, cfg *appconfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	aggregator := metrics.NewAggregator()
	provider, err := providerfactory.NewChatProvider(cfg, aggregator)
	if err != nil {
		return fmt.Errorf("error creating provider: %w", err)
	}
	defer provider.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	record, err := experiment.Run(ctx, cfg, experiment.Deps{
		Provider:   provider,
		Aggregator: aggregator,
		Out:        cmd.OutOrStdout(),
	})
	if err != nil {
		logging.LogEvent("[EXPERIMENT] run failed: %v", err)
		return err
	}
	logging.LogEvent("[EXPERIMENT] %s finished in %s", record.ExperimentID, record.Dir)
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	defaults := appconfig.Defaults()
	flags := runCmd.Flags()
	flags.String("task", defaults.Task, "task to run: all, classification, summarization or extraction")
	flags.String("model", defaults.Model, "comma-separated model identifiers (prefix with openai:, anthropic: or gemini: to pick a provider)")
	flags.String("experimentId", "", "experiment identifier (default exp_YYYYMMDD_HHMMSS)")
	flags.String("classificationFile", defaults.ClassificationFile, "classification dataset (JSONL)")
	flags.String("summarizationFile", defaults.SummarizationFile, "summarization dataset (JSONL)")
	flags.String("extractionFile", defaults.ExtractionFile, "extraction dataset (JSONL)")
	flags.Bool("openReport", defaults.OpenReport, "open the HTML report when the run finishes")
	flags.Float64("temperature", 0, "sampling temperature (provider default when unset)")
	flags.Float64("topP", 0, "nucleus sampling top-p (provider default when unset)")
	flags.Int("maxTokens", 0, "maximum completion tokens (provider default when unset)")

	for _, name := range []string{"task", "model", "experimentId", "classificationFile", "summarizationFile", "extractionFile", "openReport"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(runCmd)
}
