// internal/eval/eval.go

// Package eval runs the per-task evaluation loops: it calls the model for every
// example, normalizes and scores the output, collects low-scoring examples and
// returns the aggregate score.
package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/fatih/color"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/dataset"
	"github.com/anastev982/llm-eval-framework/internal/errlog"
	"github.com/anastev982/llm-eval-framework/internal/judge"
	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/providers"
	"github.com/anastev982/llm-eval-framework/internal/results"
	"github.com/anastev982/llm-eval-framework/internal/scoring"
	"github.com/anastev982/llm-eval-framework/internal/textnorm"
	"github.com/anastev982/llm-eval-framework/internal/util"
)

// ErrEmptyDataset is returned when a dataset file holds no examples.
var ErrEmptyDataset = errors.New("dataset has no examples")

// ErrorPrediction replaces the prediction of an extraction example whose model call failed.
const ErrorPrediction = "<ERROR>"

// Error thresholds: an example scoring below the threshold becomes an error entry.
const (
	SummarizationThreshold = 0.5
	ExtractionThreshold    = 1.0
)

const (
	traceInputRunes = 120
	separator       = "----------------------------------------"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	scoreColor  = color.New(color.FgGreen, color.Bold)
	warnColor   = color.New(color.FgYellow)
	labelColor  = color.New(color.Faint)
)

// Options configures an Evaluator.
type Options struct {
	Provider   providers.ChatProvider
	Model      string
	Parameters appconfig.Parameters
	// Judge, when set, annotates every error entry with a judge verdict.
	Judge *judge.Judge
	// Out receives the per-example trace and error analysis. Nil discards it.
	Out io.Writer
	// ErrorDir is where error CSV files are written.
	ErrorDir string
}

// Result is the outcome of one evaluator run.
type Result struct {
	Task     string
	Model    string
	Score    float64
	Examples int
	Errors   []errlog.Entry
	// ErrorLog is the path of the CSV error log, or "" when none was written.
	ErrorLog string
}

// Evaluator runs task evaluations for one model.
type Evaluator struct {
	opts Options
	out  io.Writer
	bar  progress.Model
}

// New returns an Evaluator. A provider is required.
func New(opts Options) (*Evaluator, error) {
	if opts.Provider == nil {
		return nil, errors.New("eval: provider is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("eval: model is required")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Evaluator{
		opts: opts,
		out:  out,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}, nil
}

// Run dispatches to the evaluator for task.
func (e *Evaluator) Run(ctx context.Context, task, path string) (Result, error) {
	switch task {
	case results.TaskClassification:
		return e.Classification(ctx, path)
	case results.TaskSummarization:
		return e.Summarization(ctx, path)
	case results.TaskExtraction:
		return e.Extraction(ctx, path)
	default:
		return Result{}, fmt.Errorf("eval: %w %q", appconfig.ErrInvalidTask, task)
	}
}

// Classification asks the model for one label per example and returns the accuracy.
// A failed model call aborts the evaluation.
func (e *Evaluator) Classification(ctx context.Context, path string) (Result, error) {
	result := Result{Task: results.TaskClassification, Model: e.opts.Model}
	total, err := e.begin(result.Task, path)
	if err != nil {
		return result, err
	}

	var preds, golds []string
	for example, err := range dataset.Load(path, result.Task) {
		if err != nil {
			return result, err
		}
		text := example.Text(dataset.FieldInput)
		gold := strings.ToLower(strings.TrimSpace(example.Text(dataset.FieldExpectedLabel)))

		raw, err := e.call(ctx, classificationSystemPrompt, classificationUserPrompt(text))
		if err != nil {
			return result, fmt.Errorf("classification example on line %d: %w", example.Line, err)
		}
		pred := strings.ToLower(strings.TrimSpace(raw))

		preds = append(preds, pred)
		golds = append(golds, gold)
		e.trace(len(preds), total, text, pred, gold)
	}
	if len(preds) == 0 {
		return result, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
	}

	accuracy, err := scoring.Accuracy(preds, golds)
	if err != nil {
		return result, err
	}
	result.Score = accuracy
	result.Examples = len(preds)
	scoreColor.Fprintf(e.out, "[CLASSIFICATION] Accuracy: %.3f\n", accuracy)
	logging.LogEvent("[CLASSIFICATION] %s accuracy %.3f over %d examples", e.opts.Model, accuracy, len(preds))
	return result, nil
}

// Summarization asks the model for a short summary per example and returns the mean
// ROUGE-1 F1. Examples below SummarizationThreshold are logged as errors. A failed
// model call aborts the evaluation.
func (e *Evaluator) Summarization(ctx context.Context, path string) (Result, error) {
	result := Result{Task: results.TaskSummarization, Model: e.opts.Model}
	total, err := e.begin(result.Task, path)
	if err != nil {
		return result, err
	}

	var sum float64
	for example, err := range dataset.Load(path, result.Task) {
		if err != nil {
			return result, err
		}
		text := example.Text(dataset.FieldInput)
		gold := example.Text(dataset.FieldReferenceSummary)

		pred, err := e.call(ctx, summarizationSystemPrompt, summarizationUserPrompt(text))
		if err != nil {
			return result, fmt.Errorf("summarization example on line %d: %w", example.Line, err)
		}

		f1 := scoring.Rouge1(pred, gold).F1
		sum += f1
		result.Examples++

		if f1 < SummarizationThreshold {
			result.Errors = append(result.Errors, errlog.Entry{
				Input:                text,
				Prediction:           pred,
				NormalizedPrediction: textnorm.NormalizeText(pred),
				Reference:            gold,
				NormalizedReference:  textnorm.NormalizeText(gold),
				F1:                   round3(f1),
			})
		}
		e.trace(result.Examples, total, text, pred, gold)
	}
	if result.Examples == 0 {
		return result, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
	}

	result.Score = sum / float64(result.Examples)
	scoreColor.Fprintf(e.out, "[SUMMARIZATION] ROUGE-1 F1: %.3f\n", result.Score)
	logging.LogEvent("[SUMMARIZATION] %s ROUGE-1 F1 %.3f over %d examples, %d below %.1f", e.opts.Model, result.Score, result.Examples, len(result.Errors), SummarizationThreshold)
	return e.finish(ctx, result)
}

// Extraction asks the model for the experience duration in each example and returns
// the mean token F1 of the span-normalized prediction and reference. A failed model
// call is scored as ErrorPrediction instead of aborting.
func (e *Evaluator) Extraction(ctx context.Context, path string) (Result, error) {
	result := Result{Task: results.TaskExtraction, Model: e.opts.Model}
	total, err := e.begin(result.Task, path)
	if err != nil {
		return result, err
	}

	var sum float64
	for example, err := range dataset.Load(path, result.Task) {
		if err != nil {
			return result, err
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		text := example.Text(dataset.FieldInput)
		ref := example.Text(dataset.FieldReference)

		pred, err := e.call(ctx, extractionSystemPrompt, extractionUserPrompt(text))
		if err != nil {
			logging.LogEvent("[EXTRACTION] %s line %d: model call failed, scoring %s: %v", e.opts.Model, example.Line, ErrorPrediction, err)
			warnColor.Fprintf(e.out, "Model call failed on line %d: %v\n", example.Line, err)
			pred = ErrorPrediction
		}

		normPred := textnorm.NormalizeSpan(pred)
		normRef := textnorm.NormalizeSpan(ref)
		f1 := scoring.TokenF1(normPred, normRef)
		sum += f1
		result.Examples++

		if f1 < ExtractionThreshold {
			result.Errors = append(result.Errors, errlog.Entry{
				Input:                text,
				Prediction:           pred,
				NormalizedPrediction: normPred,
				Reference:            ref,
				NormalizedReference:  normRef,
				F1:                   f1,
			})
		}
		e.trace(result.Examples, total, text, pred, ref)
	}
	if result.Examples == 0 {
		return result, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
	}

	result.Score = sum / float64(result.Examples)
	scoreColor.Fprintf(e.out, "[EXTRACTION] Avg token-F1: %.3f\n", result.Score)
	logging.LogEvent("[EXTRACTION] %s token F1 %.3f over %d examples, %d below %.1f", e.opts.Model, result.Score, result.Examples, len(result.Errors), ExtractionThreshold)
	return e.finish(ctx, result)
}

// begin announces the task and counts the examples so the progress bar has a total.
func (e *Evaluator) begin(task, path string) (int, error) {
	total, err := dataset.Count(path)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
	}
	headerColor.Fprintf(e.out, "\nRunning %s evaluation for %s (%d examples)...\n\n", task, e.opts.Model, total)
	return total, nil
}

func (e *Evaluator) call(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	text, _, err := providers.Complete(ctx, e.opts.Provider, e.opts.Model, systemPrompt, userPrompt, e.opts.Parameters)
	return text, err
}

func (e *Evaluator) trace(done, total int, input, pred, gold string) {
	percent := 1.0
	if total > 0 {
		percent = math.Min(float64(done)/float64(total), 1)
	}
	fmt.Fprintf(e.out, "[%d/%d] %s\n", done, total, e.bar.ViewAs(percent))
	fmt.Fprintf(e.out, "%s %s\n", labelColor.Sprint("INPUT:"), util.TruncateRunes(util.OneLine(input), traceInputRunes))
	fmt.Fprintf(e.out, "%s %s\n", labelColor.Sprint("PRED:"), pred)
	fmt.Fprintf(e.out, "%s %s\n", labelColor.Sprint("GOLD:"), gold)
	fmt.Fprintln(e.out, separator)
}

// finish annotates errors with the judge, prints the error analysis and writes the error log.
func (e *Evaluator) finish(ctx context.Context, result Result) (Result, error) {
	if e.opts.Judge != nil {
		for i := range result.Errors {
			entry := &result.Errors[i]
			verdict := e.opts.Judge.Evaluate(ctx, result.Task, entry.Input, entry.Prediction, entry.Reference)
			entry.Judged = true
			entry.JudgeScore = verdict.Score
			entry.JudgeJustification = verdict.Justification
		}
	}

	e.printErrorAnalysis(result)

	path, err := errlog.Write(e.out, result.Errors, result.Model, result.Task, e.opts.ErrorDir)
	if err != nil {
		return result, err
	}
	result.ErrorLog = path
	return result, nil
}

func (e *Evaluator) printErrorAnalysis(result Result) {
	headerColor.Fprintf(e.out, "\n[ERROR ANALYSIS] Low-scoring %s examples:\n", result.Task)
	if len(result.Errors) == 0 {
		fmt.Fprintln(e.out, "  No low-score examples")
		return
	}
	for _, entry := range result.Errors {
		fmt.Fprintln(e.out, separator)
		warnColor.Fprintf(e.out, "F1: %.3f\n", entry.F1)
		if entry.Judged {
			fmt.Fprintf(e.out, "JUDGE: %.0f (%s)\n", entry.JudgeScore, entry.JudgeJustification)
		}
		fmt.Fprintf(e.out, "INPUT: %s\n", util.TruncateRunes(util.OneLine(entry.Input), traceInputRunes))
		fmt.Fprintf(e.out, "PRED: %s\n", entry.Prediction)
		fmt.Fprintf(e.out, "GOLD: %s\n", entry.Reference)
		fmt.Fprintln(e.out)
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
