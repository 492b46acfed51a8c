// internal/experiment/experiment.go

// Package experiment runs an evaluation experiment: every selected task for every
// configured model, followed by the summary, the HTML report and the snapshot.
package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/eval"
	"github.com/anastev982/llm-eval-framework/internal/judge"
	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/metrics"
	"github.com/anastev982/llm-eval-framework/internal/providers"
	"github.com/anastev982/llm-eval-framework/internal/report"
	"github.com/anastev982/llm-eval-framework/internal/results"
)

// File names inside the experiment directory.
const (
	SnapshotFile = "experiment.json"
	MetricsFile  = "metrics.prom"
)

// ErrSnapshotExists is returned when the experiment id was already used.
var ErrSnapshotExists = errors.New("experiment snapshot already exists")

// Record is the persisted snapshot of one run.
type Record struct {
	ExperimentID string                   `json:"experiment_id"`
	RunID        string                   `json:"run_id"`
	Models       []string                 `json:"models"`
	Task         string                   `json:"task"`
	Timestamp    string                   `json:"timestamp"`
	Results      results.Table            `json:"results"`
	ErrorLogs    []string                 `json:"error_logs,omitempty"`
	CallStats    []metrics.ModelCallStats `json:"call_stats,omitempty"`
	JudgeModel   string                   `json:"judge_model,omitempty"`

	// ReportPath is where the HTML report was written, if it was.
	ReportPath string `json:"-"`
	// Dir is the experiment directory.
	Dir string `json:"-"`
}

// Deps are the collaborators of a run.
type Deps struct {
	Provider providers.ChatProvider
	// Aggregator, when set, is the one wired into Provider; its statistics are
	// saved with the snapshot and as a Prometheus textfile.
	Aggregator *metrics.Aggregator
	// Out receives console output. Nil means os.Stdout.
	Out io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
	// OpenViewer defaults to report.OpenInViewer.
	OpenViewer func(path string) error
}

// Run executes the experiment described by cfg.
func Run(ctx context.Context, cfg *appconfig.Config, deps Deps) (*Record, error) {
	if cfg == nil {
		return nil, errors.New("experiment: nil config")
	}
	if deps.Provider == nil {
		return nil, errors.New("experiment: provider is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	openViewer := deps.OpenViewer
	if openViewer == nil {
		openViewer = report.OpenInViewer
	}

	tasks, err := cfg.Tasks()
	if err != nil {
		return nil, err
	}
	models := cfg.Models()

	record := &Record{
		ExperimentID: cfg.ResolveExperimentID(now()),
		RunID:        uuid.NewString(),
		Models:       models,
		Task:         taskSelector(cfg),
		Results:      results.Table{},
		JudgeModel:   cfg.JudgeModel,
	}
	record.Dir = cfg.ExperimentDir(record.ExperimentID)
	snapshotPath := filepath.Join(record.Dir, SnapshotFile)

	if _, err := os.Stat(snapshotPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotExists, snapshotPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("check snapshot: %w", err)
	}
	if err := os.MkdirAll(record.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create experiment directory: %w", err)
	}

	var grader *judge.Judge
	if cfg.JudgeModel != "" {
		grader, err = judge.New(deps.Provider, cfg.JudgeModel)
		if err != nil {
			return nil, err
		}
	}

	color.New(color.FgCyan, color.Bold).Fprintf(out, "\nRunning LLM Evaluation Framework (experiment %s)...\n", record.ExperimentID)
	logging.LogEvent("[EXPERIMENT] %s run %s: models=%v tasks=%v", record.ExperimentID, record.RunID, models, tasks)

	for _, model := range models {
		evaluator, err := eval.New(eval.Options{
			Provider:   deps.Provider,
			Model:      model,
			Parameters: cfg.Parameters,
			Judge:      grader,
			Out:        out,
			ErrorDir:   record.Dir,
		})
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			result, err := evaluator.Run(ctx, task, cfg.InputFile(task))
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", model, task, err)
			}
			record.Results.Set(model, task, results.Score(result.Score))
			if result.ErrorLog != "" {
				record.ErrorLogs = append(record.ErrorLogs, result.ErrorLog)
			}
		}
	}

	fmt.Fprintln(out)
	report.PrintSummary(out, record.Results)

	if deps.Aggregator != nil {
		record.CallStats = deps.Aggregator.Snapshot()
	}

	finishedAt := now()
	record.Timestamp = finishedAt.Format(time.RFC3339)

	reportPath, err := report.Render(record.Dir, report.Data{
		ExperimentID: record.ExperimentID,
		GeneratedAt:  finishedAt,
		Table:        record.Results,
		ErrorLogs:    record.ErrorLogs,
		CallStats:    record.CallStats,
	})
	if err != nil {
		logging.LogEvent("[REPORT] Could not render report: %v", err)
		fmt.Fprintf(out, "[REPORT] Could not render report: %v\n", err)
	} else {
		record.ReportPath = reportPath
		fmt.Fprintf(out, "[REPORT] Saved %s\n", reportPath)
	}

	if err := writeSnapshot(snapshotPath, record); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "[EXPERIMENT] Saved %s\n", snapshotPath)

	if deps.Aggregator != nil {
		if err := deps.Aggregator.WriteTextfile(filepath.Join(record.Dir, MetricsFile)); err != nil {
			logging.LogEvent("[METRICS] %v", err)
		}
	}

	if cfg.OpenReport && record.ReportPath != "" {
		if err := openViewer(record.ReportPath); err != nil {
			logging.LogEvent("[REPORT] Could not open report automatically: %v", err)
			fmt.Fprintf(out, "[REPORT] Could not open report automatically: %v\n", err)
		}
	}

	return record, nil
}

// LoadRecord reads a snapshot written by Run.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	record.Dir = filepath.Dir(path)
	return &record, nil
}

// writeSnapshot creates path exclusively so a snapshot is never overwritten.
func writeSnapshot(path string, record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrSnapshotExists, path)
		}
		return fmt.Errorf("create snapshot: %w", err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	logging.LogEvent("[EXPERIMENT] Saved snapshot to %s", path)
	return nil
}

func taskSelector(cfg *appconfig.Config) string {
	tasks, err := cfg.Tasks()
	if err != nil || len(tasks) != 1 {
		return appconfig.TaskAll
	}
	return tasks[0]
}
