// internal/metrics/types.go
package metrics

import "math"

// ModelCallStats aggregates the model calls made for one model identifier during a run.
type ModelCallStats struct {
	Model            string      `json:"model"`
	Calls            int64       `json:"calls"`
	Failures         int64       `json:"failures"`
	LatencyMillis    RunningStat `json:"latency_ms"`
	PromptTokens     RunningStat `json:"prompt_tokens"`
	CompletionTokens RunningStat `json:"completion_tokens"`
}

// RunningStat holds the necessary values for online calculation of mean, variance, and stddev.
// It uses Welford's online algorithm.
type RunningStat struct {
	Count  int64   `json:"count"`
	Mean   float64 `json:"mean"`
	M2     float64 `json:"-"` // Sum of squares of differences from the current mean
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
}

// Add folds value into the running statistic.
func (rs *RunningStat) Add(value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2

	if rs.Count > 1 {
		rs.StdDev = math.Sqrt(rs.M2 / float64(rs.Count-1))
	}
}
