package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
)

type fakeProvider struct {
	chunks []string
	err    error
	got    StreamRequest
}

func (f *fakeProvider) Stream(ctx context.Context, req StreamRequest, callbacks StreamCallbacks) error {
	f.got = req
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		if err := callbacks.OnChunk(ChatMessage{Role: RoleAssistant, Content: c}); err != nil {
			return err
		}
	}
	return callbacks.OnComplete(StreamMetadata{Provider: "fake", Model: req.Model, Done: true})
}

func (f *fakeProvider) Close() error { return nil }

func TestCompleteConcatenatesChunks(t *testing.T) {
	fp := &fakeProvider{chunks: []string{"sp", "orts"}}

	text, meta, err := Complete(context.Background(), fp, "m1", "sys", "user text", appconfig.Parameters{})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "sports" {
		t.Fatalf("unexpected text %q", text)
	}
	if meta.Model != "m1" || !meta.Done {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if !fp.got.DisableStreaming {
		t.Fatal("expected streaming to be disabled")
	}
	if fp.got.SystemPrompt != "sys" || len(fp.got.History) != 1 || fp.got.History[0].Content != "user text" || fp.got.History[0].Role != RoleUser {
		t.Fatalf("unexpected request: %+v", fp.got)
	}
}

func TestCompletePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	fp := &fakeProvider{err: boom}

	if _, _, err := Complete(context.Background(), fp, "m1", "sys", "u", appconfig.Parameters{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
