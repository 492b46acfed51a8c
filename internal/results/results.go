// internal/results/results.go

// Package results holds the per-model, per-task score table built during an
// experiment and the summary statistics derived from it.
package results

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"sort"
	"strconv"
)

// Task names in canonical display order.
const (
	TaskClassification = "classification"
	TaskSummarization  = "summarization"
	TaskExtraction     = "extraction"
)

// TaskOrder lists the known tasks in the order they are run and displayed.
var TaskOrder = []string{TaskClassification, TaskSummarization, TaskExtraction}

// NotAvailable is how a non-numeric score is rendered and serialized.
const NotAvailable = "N/A"

// Value is a task score that may be absent. The zero Value is absent.
type Value struct {
	score float64
	ok    bool
}

// Score returns a present Value. NaN and infinities are treated as absent.
func Score(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{score: v, ok: true}
}

// Float returns the score and whether it is numeric.
func (v Value) Float() (float64, bool) {
	return v.score, v.ok
}

// String formats the score with three decimals or NotAvailable.
func (v Value) String() string {
	if !v.ok {
		return NotAvailable
	}
	return strconv.FormatFloat(v.score, 'f', 3, 64)
}

// MarshalJSON writes a number, or the string "N/A" for absent values.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(v.score)
}

// UnmarshalJSON accepts any JSON value; only numbers produce a present Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil
	}
	*v = Score(f)
	return nil
}

// TaskScores maps a task name to its aggregate score for one model.
type TaskScores map[string]Value

// Table maps a model identifier to its task scores.
type Table map[string]TaskScores

// Set records score for (model, task), creating the model row if needed.
func (t Table) Set(model, task string, score Value) {
	row, ok := t[model]
	if !ok {
		row = TaskScores{}
		t[model] = row
	}
	row[task] = score
}

// Get returns the score for (model, task); missing entries are absent.
func (t Table) Get(model, task string) Value {
	row, ok := t[model]
	if !ok {
		return Value{}
	}
	return row[task]
}

// AvgScore is the arithmetic mean of the numeric values in scores.
// Absent values are excluded rather than counted as zero; no numeric values yields 0.
func AvgScore(scores TaskScores) float64 {
	var sum float64
	n := 0
	for _, v := range scores {
		if f, ok := v.Float(); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// RankModels orders model names by descending AvgScore. Ties keep alphabetical order.
func (t Table) RankModels() []string {
	models := make([]string, 0, len(t))
	for m := range t {
		models = append(models, m)
	}
	sort.Strings(models)
	avg := make(map[string]float64, len(models))
	for _, m := range models {
		avg[m] = AvgScore(t[m])
	}
	sort.SliceStable(models, func(i, j int) bool {
		return avg[models[i]] > avg[models[j]]
	})
	return models
}

// Tasks returns every task present in any row: known tasks first in
// TaskOrder, then unknown task names alphabetically.
func (t Table) Tasks() []string {
	seen := map[string]bool{}
	for _, row := range t {
		for task := range row {
			seen[task] = true
		}
	}
	var tasks []string
	for _, task := range TaskOrder {
		if seen[task] {
			tasks = append(tasks, task)
			delete(seen, task)
		}
	}
	var extra []string
	for task := range seen {
		extra = append(extra, task)
	}
	slices.Sort(extra)
	return append(tasks, extra...)
}
