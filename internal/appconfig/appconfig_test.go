// internal/appconfig/appconfig_test.go
package appconfig

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/anastev982/llm-eval-framework/internal/results"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("expected default request timeout of 30s, got %v", cfg.RequestTimeout())
	}
	if got := cfg.Models(); !reflect.DeepEqual(got, []string{DefaultModel}) {
		t.Fatalf("expected default model list, got %v", got)
	}
	tasks, err := cfg.Tasks()
	if err != nil {
		t.Fatalf("Tasks returned error: %v", err)
	}
	if !reflect.DeepEqual(tasks, results.TaskOrder) {
		t.Fatalf("expected all tasks, got %v", tasks)
	}
	if got := cfg.LogFilePath(); got != filepath.Join("logs", "llmeval.log") {
		t.Fatalf("unexpected log file path %q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestRequestTimeoutFallback(t *testing.T) {
	cfg := Config{TimeoutSeconds: -1}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("expected fallback timeout, got %v", cfg.RequestTimeout())
	}
	cfg.TimeoutSeconds = 5
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("expected 5s, got %v", cfg.RequestTimeout())
	}
}

func TestModelsSplitsAndTrims(t *testing.T) {
	cfg := Config{Model: " gpt-4o-mini, anthropic:claude-3-5-haiku ,,gpt-4o-mini"}
	want := []string{"gpt-4o-mini", "anthropic:claude-3-5-haiku"}
	if got := cfg.Models(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Models=%v want %v", got, want)
	}
}

func TestTasksSelector(t *testing.T) {
	for _, task := range results.TaskOrder {
		cfg := Config{Task: strings.ToUpper(task)}
		got, err := cfg.Tasks()
		if err != nil {
			t.Fatalf("Tasks(%q) error: %v", task, err)
		}
		if !reflect.DeepEqual(got, []string{task}) {
			t.Fatalf("Tasks(%q)=%v", task, got)
		}
	}

	_, err := Config{Task: "translation"}.Tasks()
	if !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}
}

func TestResolveExperimentID(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if got := (Config{}).ResolveExperimentID(now); got != "exp_20260304_050607" {
		t.Fatalf("derived id=%q", got)
	}
	if got := (Config{ExperimentID: " promptA "}).ResolveExperimentID(now); got != "promptA" {
		t.Fatalf("explicit id=%q", got)
	}
}

func TestExperimentDirAndInputFile(t *testing.T) {
	cfg := Defaults()
	if got := cfg.ExperimentDir("exp1"); got != filepath.Join("logs", "experiments", "exp1") {
		t.Fatalf("ExperimentDir=%q", got)
	}
	if got := cfg.InputFile(results.TaskSummarization); got != DefaultSummarizationFile {
		t.Fatalf("InputFile=%q", got)
	}
	if got := cfg.InputFile("unknown"); got != "" {
		t.Fatalf("InputFile(unknown)=%q", got)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{name: "no models", mut: func(c *Config) { c.Model = " , " }},
		{name: "bad task", mut: func(c *Config) { c.Task = "nope" }},
		{name: "path in experiment id", mut: func(c *Config) { c.ExperimentID = "../escape" }},
		{name: "negative rate", mut: func(c *Config) { c.RequestsPerSecond = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mut(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestShowConfigWritesYAML(t *testing.T) {
	var buf bytes.Buffer
	temp := 0.2
	cfg := Defaults()
	cfg.Parameters.Temperature = &temp

	if err := ShowConfig(&buf, "config.yaml", &cfg); err != nil {
		t.Fatalf("ShowConfig error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Config file: config.yaml", "task: all", "model: gpt-4o-mini", "temperature: 0.2", "resolved request timeout: 30s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestShowConfigWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	if err := ShowConfig(&buf, "", nil); err != nil {
		t.Fatalf("ShowConfig error: %v", err)
	}
	if !strings.Contains(buf.String(), "No config file loaded") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
