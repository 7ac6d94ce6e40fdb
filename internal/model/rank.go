package model

import (
	"math"
	"sort"
	"strconv"
)

// Softmax converts logits into probabilities.
func Softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	maxVal := float64(logits[0])
	for _, v := range logits[1:] {
		maxVal = math.Max(maxVal, float64(v))
	}
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - maxVal)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Rank orders scores by probability, highest first, and keeps at most topK of
// them. Ties keep label order. Scores beyond the label list are ignored.
func Rank(scores []float64, labels []string, topK int) []Prediction {
	n := len(scores)
	if n > len(labels) {
		n = len(labels)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	if topK > 0 && topK < n {
		idx = idx[:topK]
	}

	predictions := make([]Prediction, 0, len(idx))
	for _, i := range idx {
		predictions = append(predictions, Prediction{
			Index:       strconv.Itoa(i),
			Caption:     labels[i],
			Probability: scores[i],
		})
	}
	return predictions
}
