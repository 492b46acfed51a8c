// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/anastev982/llm-eval-framework/internal/results"
)

const (
	// TaskAll selects every task in results.TaskOrder.
	TaskAll = "all"
	// DefaultModel is used when no model list is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultProvider handles model identifiers without a provider prefix.
	DefaultProvider = "openai"
	// DefaultLogsDir is the root of the experiments directory tree.
	DefaultLogsDir = "logs"
	// DefaultClassificationFile is the default classification dataset.
	DefaultClassificationFile = "data/classification_news.jsonl"
	// DefaultSummarizationFile is the default summarization dataset.
	DefaultSummarizationFile = "data/summarization_articles.jsonl"
	// DefaultExtractionFile is the default extraction dataset.
	DefaultExtractionFile = "data/extraction_experience.jsonl"
	// defaultRequestTimeout bounds every model call.
	defaultRequestTimeout = 30 * time.Second
	// experimentIDLayout formats timestamp-derived experiment ids.
	experimentIDLayout = "20060102_150405"
)

// ErrInvalidTask is returned when the task selector names an unknown task.
var ErrInvalidTask = errors.New("invalid task")

// Config represents the merged application configuration (flags > env > file > defaults).
type Config struct {
	Task               string     `mapstructure:"task" yaml:"task"`
	Model              string     `mapstructure:"model" yaml:"model"`
	ExperimentID       string     `mapstructure:"experimentId" yaml:"experimentId,omitempty"`
	ClassificationFile string     `mapstructure:"classificationFile" yaml:"classificationFile"`
	SummarizationFile  string     `mapstructure:"summarizationFile" yaml:"summarizationFile"`
	ExtractionFile     string     `mapstructure:"extractionFile" yaml:"extractionFile"`
	LogsDir            string     `mapstructure:"logsDir" yaml:"logsDir"`
	LogFile            string     `mapstructure:"logFile" yaml:"logFile,omitempty"`
	Provider           string     `mapstructure:"provider" yaml:"provider"`
	BaseURL            string     `mapstructure:"baseURL" yaml:"baseURL,omitempty"`
	TimeoutSeconds     int        `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond  float64    `mapstructure:"requestsPerSecond" yaml:"requestsPerSecond,omitempty"`
	JudgeModel         string     `mapstructure:"judgeModel" yaml:"judgeModel,omitempty"`
	OpenReport         bool       `mapstructure:"openReport" yaml:"openReport"`
	Debug              bool       `mapstructure:"debug" yaml:"debug"`
	Parameters         Parameters `mapstructure:"parameters" yaml:"parameters,omitempty"`
	ConfigPath         string     `mapstructure:"-" yaml:"-"`
}

// Parameters are optional provider sampling parameters. Nil means provider default.
type Parameters struct {
	Temperature *float64 `mapstructure:"temperature" yaml:"temperature,omitempty"`
	TopP        *float64 `mapstructure:"topP" yaml:"topP,omitempty"`
	MaxTokens   *int     `mapstructure:"maxTokens" yaml:"maxTokens,omitempty"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Task:               TaskAll,
		Model:              DefaultModel,
		ClassificationFile: DefaultClassificationFile,
		SummarizationFile:  DefaultSummarizationFile,
		ExtractionFile:     DefaultExtractionFile,
		LogsDir:            DefaultLogsDir,
		Provider:           DefaultProvider,
		TimeoutSeconds:     int(defaultRequestTimeout.Seconds()),
		OpenReport:         true,
	}
}

// RequestTimeout returns the per-call timeout, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := strings.TrimSpace(c.LogFile); path != "" {
		return path
	}
	return filepath.Join(c.logsDir(), "llmeval.log")
}

// Models splits the comma-separated model list, trimming blanks and duplicates.
func (c Config) Models() []string {
	var models []string
	seen := map[string]bool{}
	for _, part := range strings.Split(c.Model, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		models = append(models, name)
	}
	return models
}

// Tasks resolves the task selector into the ordered list of tasks to run.
func (c Config) Tasks() ([]string, error) {
	selector := strings.ToLower(strings.TrimSpace(c.Task))
	if selector == "" || selector == TaskAll {
		return append([]string(nil), results.TaskOrder...), nil
	}
	for _, task := range results.TaskOrder {
		if selector == task {
			return []string{task}, nil
		}
	}
	return nil, fmt.Errorf("%w %q (want %s or one of %s)", ErrInvalidTask, c.Task, TaskAll, strings.Join(results.TaskOrder, ", "))
}

// InputFile returns the dataset path configured for task.
func (c Config) InputFile(task string) string {
	switch task {
	case results.TaskClassification:
		return c.ClassificationFile
	case results.TaskSummarization:
		return c.SummarizationFile
	case results.TaskExtraction:
		return c.ExtractionFile
	default:
		return ""
	}
}

// ResolveExperimentID returns the configured id or one derived from now.
func (c Config) ResolveExperimentID(now time.Time) string {
	if id := strings.TrimSpace(c.ExperimentID); id != "" {
		return id
	}
	return "exp_" + now.Format(experimentIDLayout)
}

// ExperimentDir is the per-experiment output directory.
func (c Config) ExperimentDir(experimentID string) string {
	return filepath.Join(c.logsDir(), "experiments", experimentID)
}

// Validate checks the settings an evaluation run depends on.
func (c Config) Validate() error {
	if _, err := c.Tasks(); err != nil {
		return err
	}
	if len(c.Models()) == 0 {
		return errors.New("at least one model is required")
	}
	if id := c.ExperimentID; id != "" && (strings.ContainsAny(id, `/\`) || id == "." || id == "..") {
		return fmt.Errorf("experiment id %q must not contain path separators", id)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requestsPerSecond must be >= 0, got %v", c.RequestsPerSecond)
	}
	return nil
}

func (c Config) logsDir() string {
	if dir := strings.TrimSpace(c.LogsDir); dir != "" {
		return dir
	}
	return DefaultLogsDir
}
