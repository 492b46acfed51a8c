package llmeval

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newOpenAIServer answers every chat completion with reply.
func newOpenAIServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "local-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 5, "completion_tokens": 1, "total_tokens": 6},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestShowConfig(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	err := execute([]string{"show", "config", "--logFile", filepath.Join(dir, "llmeval.log"), "--timeout", "45"}, &out)
	if err != nil {
		t.Fatalf("show config returned error: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Current configuration:", "timeout: 45", "model:", "resolved request timeout: 45s"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	if err := execute([]string{"version", "--logFile", filepath.Join(t.TempDir(), "llmeval.log")}, &out); err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "llmeval ") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestRunClassificationAgainstOpenAICompatibleServer(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	server := newOpenAIServer(t, "finance")

	dir := t.TempDir()
	dataset := filepath.Join(dir, "classification.jsonl")
	content := `{"input": "Shares rose.", "expected_label": "finance"}` + "\n" +
		`{"input": "A comet passed.", "expected_label": "science"}` + "\n"
	if err := os.WriteFile(dataset, []byte(content), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	logsDir := filepath.Join(dir, "logs")

	var out bytes.Buffer
	err := execute([]string{
		"run",
		"--task", "classification",
		"--model", "openai:local-model",
		"--experimentId", "exp_cli",
		"--classificationFile", dataset,
		"--baseURL", server.URL,
		"--logsDir", logsDir,
		"--logFile", filepath.Join(logsDir, "llmeval.log"),
		"--openReport=false",
	}, &out)
	if err != nil {
		t.Fatalf("run returned error: %v\n%s", err, out.String())
	}

	expDir := filepath.Join(logsDir, "experiments", "exp_cli")
	raw, err := os.ReadFile(filepath.Join(expDir, "experiment.json"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snapshot struct {
		Results map[string]map[string]any `json:"results"`
		Task    string                    `json:"task"`
	}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.Task != "classification" || snapshot.Results["openai:local-model"]["classification"] != 0.5 {
		t.Fatalf("unexpected snapshot: %s", raw)
	}
	for _, name := range []string{"report.html", "metrics.prom"} {
		if _, err := os.Stat(filepath.Join(expDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if !strings.Contains(out.String(), "Accuracy: 0.500") {
		t.Fatalf("expected accuracy in output:\n%s", out.String())
	}
}

func TestJudgeCommand(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	server := newOpenAIServer(t, `{"score": 5, "justification": "Matches the reference."}`)

	var out bytes.Buffer
	err := execute([]string{
		"judge",
		"--judgeModel", "openai:judge",
		"--baseURL", server.URL,
		"--answer", "3 years",
		"--reference", "3 years",
		"--logFile", filepath.Join(t.TempDir(), "llmeval.log"),
	}, &out)
	if err != nil {
		t.Fatalf("judge returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Score: 5") || !strings.Contains(out.String(), "Matches the reference.") {
		t.Fatalf("unexpected judge output:\n%s", out.String())
	}
}
