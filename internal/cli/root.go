// internal/cli/root.go
package llmeval

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/logging"
)

const envPrefix = "LLMEVAL"

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:          "llmeval",
	Short:        "llmeval evaluates language models on classification, summarization and extraction datasets",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// 2) Sampling parameters are optional, so only flags the user set are applied.
		applyParameterFlags(cmd)

		// 3) Materialize the merged configuration (flags > env > config > defaults).
		cfg := appconfig.Defaults()
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		currentConfig = &cfg

		if err := logging.Init(cfg.LogFilePath(), cfg.Debug); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		if cfg.Debug {
			pp.Println(cfg)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}

func execute(args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := appconfig.Defaults()
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file, JSON or YAML (default ./llmeval.yaml or ./config/llmeval.yaml)")
	flags.Bool("debug", defaults.Debug, "enable debug logging")
	flags.String("logsDir", defaults.LogsDir, "root directory for logs and experiments")
	flags.String("logFile", "", "process log file (default <logsDir>/llmeval.log)")
	flags.String("provider", defaults.Provider, "default provider for models without a prefix (openai, anthropic, gemini)")
	flags.String("baseURL", "", "base URL of an OpenAI-compatible server")
	flags.Int("timeout", defaults.TimeoutSeconds, "per-call timeout in seconds")
	flags.Float64("requestsPerSecond", 0, "maximum model calls per second (0 = unlimited)")
	flags.String("judgeModel", "", "model used to judge low-scoring examples")

	// Bind flags to Viper keys (flags override config)
	for _, name := range []string{"debug", "logsDir", "logFile", "provider", "baseURL", "timeout", "requestsPerSecond", "judgeModel"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{"parameters.temperature", "parameters.topP", "parameters.maxTokens"} {
		_ = viper.BindEnv(key)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}
	viper.SetConfigName("llmeval")
	viper.AddConfigPath(".")
	viper.AddConfigPath("config")
}

// ensureConfigLoaded reads the config file and sets defaults for every key.
func ensureConfigLoaded() error {
	defaults := appconfig.Defaults()
	viper.SetDefault("task", defaults.Task)
	viper.SetDefault("model", defaults.Model)
	viper.SetDefault("experimentId", "")
	viper.SetDefault("classificationFile", defaults.ClassificationFile)
	viper.SetDefault("summarizationFile", defaults.SummarizationFile)
	viper.SetDefault("extractionFile", defaults.ExtractionFile)
	viper.SetDefault("logsDir", defaults.LogsDir)
	viper.SetDefault("provider", defaults.Provider)
	viper.SetDefault("timeout", defaults.TimeoutSeconds)
	viper.SetDefault("openReport", defaults.OpenReport)
	viper.SetDefault("debug", false)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// No file: fine, we'll use defaults/flags
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// applyParameterFlags copies explicitly set sampling flags into viper.
func applyParameterFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("temperature") {
		if v, err := flags.GetFloat64("temperature"); err == nil {
			viper.Set("parameters.temperature", v)
		}
	}
	if flags.Changed("topP") {
		if v, err := flags.GetFloat64("topP"); err == nil {
			viper.Set("parameters.topP", v)
		}
	}
	if flags.Changed("maxTokens") {
		if v, err := flags.GetInt("maxTokens"); err == nil {
			viper.Set("parameters.maxTokens", v)
		}
	}
}

// getConfig returns the loaded application configuration.
func getConfig() *appconfig.Config {
	return currentConfig
}
