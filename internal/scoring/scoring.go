// internal/scoring/scoring.go

// Package scoring implements the per-example metrics used by the task evaluators.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anastev982/llm-eval-framework/internal/textnorm"
)

// ErrLengthMismatch is returned by Accuracy when predictions and labels differ in length.
var ErrLengthMismatch = errors.New("scoring: predictions and labels differ in length")

// Rouge holds unigram-overlap precision, recall and F1.
type Rouge struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Accuracy returns the fraction of index-wise equal pairs. Empty labels yield 0.
func Accuracy(preds, labels []string) (float64, error) {
	if len(preds) != len(labels) {
		return 0, fmt.Errorf("%w: %d predictions, %d labels", ErrLengthMismatch, len(preds), len(labels))
	}
	if len(labels) == 0 {
		return 0, nil
	}
	correct := 0
	for i := range labels {
		if preds[i] == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels)), nil
}

// TokenF1 compares the lowercased whitespace token sets of pred and ref.
// Punctuation is kept; callers normalize beforehand when they need it stripped.
func TokenF1(pred, ref string) float64 {
	predTokens := tokenSet(strings.Fields(strings.ToLower(pred)))
	refTokens := tokenSet(strings.Fields(strings.ToLower(ref)))
	if len(predTokens) == 0 || len(refTokens) == 0 {
		return 0
	}
	overlap := intersection(predTokens, refTokens)
	precision := float64(overlap) / float64(len(predTokens))
	recall := float64(overlap) / float64(len(refTokens))
	return harmonicMean(precision, recall)
}

// Rouge1 computes ROUGE-1 style unigram overlap over the NormalizeText forms of pred and ref.
func Rouge1(pred, ref string) Rouge {
	predWords := strings.Fields(textnorm.NormalizeText(pred))
	refWords := strings.Fields(textnorm.NormalizeText(ref))
	if len(predWords) == 0 || len(refWords) == 0 {
		return Rouge{}
	}
	predSet := tokenSet(predWords)
	refSet := tokenSet(refWords)
	overlap := intersection(predSet, refSet)

	r := Rouge{
		Precision: float64(overlap) / float64(len(predSet)),
		Recall:    float64(overlap) / float64(len(refSet)),
	}
	r.F1 = harmonicMean(r.Precision, r.Recall)
	return r
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func intersection(a, b map[string]struct{}) int {
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}

func harmonicMean(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
