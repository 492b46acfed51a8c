// internal/dataset/dataset.go

// Package dataset reads line-delimited JSON evaluation examples.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/anastev982/llm-eval-framework/internal/results"
	"github.com/anastev982/llm-eval-framework/internal/textnorm"
)

// Field names used by the evaluation datasets.
const (
	FieldInput            = "input"
	FieldExpectedLabel    = "expected_label"
	FieldReferenceSummary = "reference_summary"
	FieldReference        = "reference"
)

const maxLineBytes = 4 * 1024 * 1024

// Example is one decoded record. Line is the 1-based line number in the source file.
type Example struct {
	Line   int
	Fields map[string]any
}

// Text returns the named field as a string, or "" when it is missing or not a string.
func (e Example) Text(name string) string {
	return textnorm.Text(e.Fields[name])
}

// ReferenceField returns the name of the reference field for task.
func ReferenceField(task string) (string, error) {
	switch task {
	case results.TaskClassification:
		return FieldExpectedLabel, nil
	case results.TaskSummarization:
		return FieldReferenceSummary, nil
	case results.TaskExtraction:
		return FieldReference, nil
	default:
		return "", fmt.Errorf("dataset: unknown task %q", task)
	}
}

// Schema returns the JSON schema every record of task must satisfy.
func Schema(task string) (map[string]any, error) {
	reference, err := ReferenceField(task)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			FieldInput: map[string]any{"type": "string"},
			reference:  map[string]any{"type": "string"},
		},
		"required": []string{FieldInput, reference},
	}, nil
}

// Load returns a lazy sequence over the records in path. The file is opened each
// time the sequence is ranged over and closed when iteration ends. Blank lines are
// skipped. A record that is not a JSON object or fails the task schema yields an
// error naming its line, after which the sequence stops.
func Load(path, task string) iter.Seq2[Example, error] {
	return func(yield func(Example, error) bool) {
		definition, err := Schema(task)
		if err != nil {
			yield(Example{}, err)
			return
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(definition))
		if err != nil {
			yield(Example{}, fmt.Errorf("dataset: compile %s schema: %w", task, err))
			return
		}

		file, err := os.Open(path)
		if err != nil {
			yield(Example{}, fmt.Errorf("dataset: open %s: %w", path, err))
			return
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			example, err := decode(schema, line, lineNumber)
			if err != nil {
				yield(Example{}, fmt.Errorf("dataset: %s:%d: %w", path, lineNumber, err))
				return
			}
			if !yield(example, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Example{}, fmt.Errorf("dataset: read %s: %w", path, err))
		}
	}
}

// Count returns the number of non-blank lines in path.
func Count(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	count := 0
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return count, nil
}

func decode(schema *gojsonschema.Schema, line []byte, lineNumber int) (Example, error) {
	var fields map[string]any
	if err := json.Unmarshal(line, &fields); err != nil {
		return Example{}, fmt.Errorf("invalid JSON record: %w", err)
	}
	if fields == nil {
		return Example{}, fmt.Errorf("record is not a JSON object")
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(fields))
	if err != nil {
		return Example{}, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return Example{}, fmt.Errorf("record failed validation: %s", strings.Join(errs, ", "))
	}
	return Example{Line: lineNumber, Fields: fields}, nil
}
