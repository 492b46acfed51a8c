package metrics

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/providers"
)

type scriptedProvider struct {
	err  error
	meta providers.StreamMetadata
}

func (s *scriptedProvider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	if s.err != nil {
		return s.err
	}
	if callbacks.OnChunk != nil {
		if err := callbacks.OnChunk(providers.ChatMessage{Role: providers.RoleAssistant, Content: "ok"}); err != nil {
			return err
		}
	}
	if callbacks.OnComplete != nil {
		return callbacks.OnComplete(s.meta)
	}
	return nil
}

func (s *scriptedProvider) Close() error { return nil }

func TestRunningStat(t *testing.T) {
	var rs RunningStat
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		rs.Add(v)
	}
	if rs.Count != 8 || rs.Mean != 5 || rs.Min != 2 || rs.Max != 9 {
		t.Fatalf("unexpected running stat: %+v", rs)
	}
	// sample stddev of the series above
	if math.Abs(rs.StdDev-2.138089935) > 1e-6 {
		t.Fatalf("unexpected stddev %v", rs.StdDev)
	}
}

func TestProviderRecordsSuccessAndFailure(t *testing.T) {
	agg := NewAggregator()
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	ok := NewProvider(&scriptedProvider{meta: providers.StreamMetadata{PromptTokens: 10, CompletionTokens: 2}}, agg)
	ok.now = func() time.Time {
		tick = tick.Add(100 * time.Millisecond)
		return tick
	}
	var text string
	_, _, err := providers.Complete(context.Background(), ok, "m1", "", "hi", appconfig.Parameters{})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	text, _, _ = providers.Complete(context.Background(), ok, "m1", "", "hi", appconfig.Parameters{})
	if text != "ok" {
		t.Fatalf("chunks should pass through, got %q", text)
	}

	boom := errors.New("boom")
	failing := NewProvider(&scriptedProvider{err: boom}, agg)
	if _, _, err := providers.Complete(context.Background(), failing, "m2", "", "hi", appconfig.Parameters{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	snap := agg.Snapshot()
	if len(snap) != 2 || snap[0].Model != "m1" || snap[1].Model != "m2" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap[0].Calls != 2 || snap[0].Failures != 0 || snap[0].LatencyMillis.Mean != 100 || snap[0].PromptTokens.Mean != 10 {
		t.Fatalf("unexpected m1 stats: %+v", snap[0])
	}
	if snap[1].Calls != 1 || snap[1].Failures != 1 {
		t.Fatalf("unexpected m2 stats: %+v", snap[1])
	}
}

func TestWriteTextfile(t *testing.T) {
	agg := NewAggregator()
	agg.Record("gpt-4o-mini", 1500*time.Millisecond, 5, 1, nil)

	path := filepath.Join(t.TempDir(), "exp", "metrics.prom")
	if err := agg.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		`llmeval_model_calls_total{model="gpt-4o-mini"} 1`,
		`llmeval_model_call_duration_seconds_count{model="gpt-4o-mini"} 1`,
		`llmeval_model_tokens_total{kind="prompt",model="gpt-4o-mini"} 5`,
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in metrics:\n%s", want, content)
		}
	}
}
