// internal/report/report.go

// Package report renders experiment results: a standalone HTML report with a
// Chart.js comparison chart and a console summary table.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/metrics"
	"github.com/anastev982/llm-eval-framework/internal/results"
	"github.com/anastev982/llm-eval-framework/internal/util"
)

// FileName is the name of the HTML report inside the experiment directory.
const FileName = "report.html"

// ErrNoResults is returned when there is nothing to report.
var ErrNoResults = errors.New("no results to report")

// Data is everything the HTML report shows.
type Data struct {
	ExperimentID string
	GeneratedAt  time.Time
	Table        results.Table
	// ErrorLogs are paths of the CSV error logs written during the run.
	ErrorLogs []string
	CallStats []metrics.ModelCallStats
}

type reportView struct {
	Title       string
	Experiment  string
	GeneratedAt string
	Tasks       []string
	Rows        []reportRow
	ErrorLogs   []errorLogLink
	CallStats   []callStatsRow
	ChartJSON   template.JS
}

type reportRow struct {
	Rank    int
	Model   string
	Cells   []string
	Average string
	Top     bool
}

type errorLogLink struct {
	Name string
	Href string
}

type callStatsRow struct {
	Model       string
	Calls       int64
	Failures    int64
	MeanLatency string
	MaxLatency  string
}

type chartPayload struct {
	Models   []string       `json:"models"`
	Datasets []chartDataset `json:"datasets"`
}

type chartDataset struct {
	Label string     `json:"label"`
	Data  []*float64 `json:"data"`
}

// Render writes <dir>/report.html and returns its path.
func Render(dir string, data Data) (string, error) {
	if len(data.Table) == 0 {
		return "", ErrNoResults
	}

	content, err := Generate(dir, data)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := util.WriteFile(path, []byte(content)); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	logging.LogEvent("[REPORT] Saved HTML report to %s", path)
	return path, nil
}

// Generate renders the report HTML. Error log links are made relative to dir.
func Generate(dir string, data Data) (string, error) {
	if len(data.Table) == 0 {
		return "", ErrNoResults
	}

	models := data.Table.RankModels()
	tasks := data.Table.Tasks()

	view := reportView{
		Title:       "llmeval: LLM Evaluation Report",
		Experiment:  data.ExperimentID,
		GeneratedAt: data.GeneratedAt.Format(time.RFC1123),
		Tasks:       make([]string, len(tasks)),
	}
	for i, task := range tasks {
		view.Tasks[i] = capitalize(task)
	}

	payload := chartPayload{Models: models}
	for _, task := range tasks {
		dataset := chartDataset{Label: capitalize(task)}
		for _, model := range models {
			if score, ok := data.Table.Get(model, task).Float(); ok {
				dataset.Data = append(dataset.Data, &score)
			} else {
				dataset.Data = append(dataset.Data, nil)
			}
		}
		payload.Datasets = append(payload.Datasets, dataset)
	}

	for i, model := range models {
		scores := data.Table[model]
		row := reportRow{
			Rank:    i + 1,
			Model:   model,
			Average: fmt.Sprintf("%.3f", results.AvgScore(scores)),
			Top:     i == 0,
		}
		for _, task := range tasks {
			row.Cells = append(row.Cells, scores[task].String())
		}
		view.Rows = append(view.Rows, row)
	}

	for _, logPath := range data.ErrorLogs {
		href := filepath.Base(logPath)
		if rel, err := filepath.Rel(dir, logPath); err == nil {
			href = filepath.ToSlash(rel)
		}
		view.ErrorLogs = append(view.ErrorLogs, errorLogLink{Name: filepath.Base(logPath), Href: href})
	}

	for _, stats := range data.CallStats {
		view.CallStats = append(view.CallStats, callStatsRow{
			Model:       stats.Model,
			Calls:       stats.Calls,
			Failures:    stats.Failures,
			MeanLatency: fmt.Sprintf("%.0f", stats.LatencyMillis.Mean),
			MaxLatency:  fmt.Sprintf("%.0f", stats.LatencyMillis.Max),
		})
	}

	chartJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode chart data: %w", err)
	}
	view.ChartJSON = template.JS(chartJSON)

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
