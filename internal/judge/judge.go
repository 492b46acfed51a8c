// internal/judge/judge.go

// Package judge asks a model to grade another model's answer on a 1 to 5 scale.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/providers"
	"github.com/anastev982/llm-eval-framework/internal/results"
)

// InvalidOutput is the justification recorded when the judge reply cannot be used.
const InvalidOutput = "Invalid JSON from judge"

const systemPrompt = `You are an impartial evaluator of AI model outputs.
Return only a JSON object with:
- score (1 to 5)
- justification (brief reasoning)`

const promptTemplate = `Task: %s

Input:
%s

Model Answer:
%s

Reference Answer:
%s

Evaluate the model answer and return JSON only.`

var verdictSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"score":         map[string]any{"type": "number", "minimum": 1, "maximum": 5},
		"justification": map[string]any{"type": "string"},
	},
	"required": []string{"score", "justification"},
}

// Verdict is the judge's grade. Valid is false when the score is the zero fallback.
type Verdict struct {
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
	Valid         bool    `json:"-"`
}

// Judge grades answers with one model through provider.
type Judge struct {
	provider providers.ChatProvider
	model    string
	schema   *gojsonschema.Schema
}

// New returns a Judge that calls model through provider.
func New(provider providers.ChatProvider, model string) (*Judge, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(verdictSchema))
	if err != nil {
		return nil, fmt.Errorf("judge: compile verdict schema: %w", err)
	}
	return &Judge{provider: provider, model: model, schema: schema}, nil
}

// Evaluate grades answer against reference for the given task. It never returns an
// error: a failed call or unusable reply yields a zero score with a note.
func (j *Judge) Evaluate(ctx context.Context, task, input, answer, reference string) Verdict {
	if strings.TrimSpace(reference) == "" {
		reference = results.NotAvailable
	}
	prompt := fmt.Sprintf(promptTemplate, task, input, answer, reference)

	req := providers.StreamRequest{
		Model:            j.model,
		SystemPrompt:     systemPrompt,
		History:          []providers.ChatMessage{{Role: providers.RoleUser, Content: prompt}},
		JSONMode:         true,
		DisableStreaming: true,
	}

	var reply strings.Builder
	err := j.provider.Stream(ctx, req, providers.StreamCallbacks{
		OnChunk: func(chunk providers.ChatMessage) error {
			reply.WriteString(chunk.Content)
			return nil
		},
	})
	if err != nil {
		logging.LogEvent("[JUDGE] %s call failed: %v", j.model, err)
		return Verdict{Justification: fmt.Sprintf("Judge call failed: %v", err)}
	}
	return j.Parse(reply.String())
}

// Parse turns a raw judge reply into a Verdict.
func (j *Judge) Parse(raw string) Verdict {
	payload := stripCodeFence(raw)

	var document any
	if err := json.Unmarshal([]byte(payload), &document); err != nil {
		return Verdict{Justification: InvalidOutput}
	}
	result, err := j.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil || !result.Valid() {
		return Verdict{Justification: InvalidOutput}
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(payload), &verdict); err != nil {
		return Verdict{Justification: InvalidOutput}
	}
	verdict.Valid = true
	return verdict
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
		trimmed = trimmed[newline+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
