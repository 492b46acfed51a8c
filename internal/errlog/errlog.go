// internal/errlog/errlog.go

// Package errlog writes low-scoring examples to CSV files for manual review.
package errlog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/util"
)

// Entry is one low-scoring example.
type Entry struct {
	Input                string
	Prediction           string
	NormalizedPrediction string
	Reference            string
	NormalizedReference  string
	F1                   float64

	// Judged is set when a judge model annotated the entry.
	Judged             bool
	JudgeScore         float64
	JudgeJustification string
}

var baseHeader = []string{"input", "pred", "normalized_pred", "gold", "normalized_gold", "f1"}

// FileName returns the CSV file name used for task and model.
func FileName(task, model string) string {
	return fmt.Sprintf("%s_errors_%s.csv", task, util.Slugify(model))
}

// Write saves entries to <dir>/<task>_errors_<model>.csv and prints a confirmation
// to out. Nothing is written and "" is returned when entries is empty.
func Write(out io.Writer, entries []Entry, model, task, dir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	judged := false
	for _, entry := range entries {
		if entry.Judged {
			judged = true
			break
		}
	}

	header := append([]string(nil), baseHeader...)
	if judged {
		header = append(header, "judge_score", "judge_justification")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("errlog: write header: %w", err)
	}
	for _, entry := range entries {
		record := []string{
			entry.Input,
			entry.Prediction,
			entry.NormalizedPrediction,
			entry.Reference,
			entry.NormalizedReference,
			strconv.FormatFloat(entry.F1, 'f', -1, 64),
		}
		if judged {
			score := ""
			if entry.Judged {
				score = strconv.FormatFloat(entry.JudgeScore, 'f', -1, 64)
			}
			record = append(record, score, entry.JudgeJustification)
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("errlog: write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("errlog: flush: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("errlog: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(task, model))
	if err := util.WriteFile(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("errlog: save %s: %w", path, err)
	}

	if out != nil {
		fmt.Fprintf(out, "[ERROR LOG] Saved %d examples %s\n", len(entries), path)
	}
	logging.LogEvent("[ERROR LOG] Saved %d %s examples for %s to %s", len(entries), task, model, path)
	return path, nil
}
