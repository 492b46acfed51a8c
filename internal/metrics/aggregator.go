// internal/metrics/aggregator.go
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anastev982/llm-eval-framework/internal/logging"
)

// Aggregator collects model-call statistics for one experiment run.
type Aggregator struct {
	mutex    sync.Mutex
	stats    map[string]*ModelCallStats
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

// NewAggregator creates an Aggregator with its own Prometheus registry.
func NewAggregator() *Aggregator {
	agg := &Aggregator{
		stats:    make(map[string]*ModelCallStats),
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmeval",
			Name:      "model_calls_total",
			Help:      "Model calls issued, by model.",
		}, []string{"model"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmeval",
			Name:      "model_call_failures_total",
			Help:      "Model calls that returned an error, by model.",
		}, []string{"model"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llmeval",
			Name:      "model_call_duration_seconds",
			Help:      "Wall-clock duration of model calls, by model.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}, []string{"model"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmeval",
			Name:      "model_tokens_total",
			Help:      "Tokens reported by providers, by model and kind.",
		}, []string{"model", "kind"}),
	}
	agg.registry.MustRegister(agg.calls, agg.failures, agg.latency, agg.tokens)
	return agg
}

// Record adds one model call to the statistics.
func (a *Aggregator) Record(model string, duration time.Duration, promptTokens, completionTokens int, callErr error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	s, ok := a.stats[model]
	if !ok {
		s = &ModelCallStats{Model: model}
		a.stats[model] = s
	}
	s.Calls++
	s.LatencyMillis.Add(float64(duration.Milliseconds()))
	a.calls.WithLabelValues(model).Inc()
	a.latency.WithLabelValues(model).Observe(duration.Seconds())

	if callErr != nil {
		s.Failures++
		a.failures.WithLabelValues(model).Inc()
		return
	}
	s.PromptTokens.Add(float64(promptTokens))
	s.CompletionTokens.Add(float64(completionTokens))
	a.tokens.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	a.tokens.WithLabelValues(model, "completion").Add(float64(completionTokens))
}

// Snapshot returns a copy of the statistics ordered by model name.
func (a *Aggregator) Snapshot() []ModelCallStats {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	out := make([]ModelCallStats, 0, len(a.stats))
	for _, s := range a.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

// WriteTextfile writes the Prometheus metrics in text exposition format to path.
func (a *Aggregator) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	logging.LogEvent("[METRICS] Saved model call metrics to %s", path)
	return nil
}
