package model

import (
	"math"
	"reflect"
	"testing"
)

func TestSoftmax(t *testing.T) {
	got := Softmax([]float32{1, 2, 3, 1000})
	var sum float64
	for _, p := range got {
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("Softmax() produced %v", got)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("sum = %v, want 1", sum)
	}
	if got[3] < 0.999 {
		t.Errorf("largest logit probability = %v", got[3])
	}
	if len(Softmax(nil)) != 0 {
		t.Error("Softmax(nil) should be empty")
	}
}

func TestRank(t *testing.T) {
	labels := []string{"cat", "dog", "bird", "fish"}
	tests := []struct {
		name   string
		scores []float64
		topK   int
		want   []Prediction
	}{
		{
			name:   "top two",
			scores: []float64{0.1, 0.6, 0.3, 0.0},
			topK:   2,
			want: []Prediction{
				{Index: "1", Caption: "dog", Probability: 0.6},
				{Index: "2", Caption: "bird", Probability: 0.3},
			},
		},
		{
			name:   "ties keep label order",
			scores: []float64{0.25, 0.25, 0.25, 0.25},
			topK:   0,
			want: []Prediction{
				{Index: "0", Caption: "cat", Probability: 0.25},
				{Index: "1", Caption: "dog", Probability: 0.25},
				{Index: "2", Caption: "bird", Probability: 0.25},
				{Index: "3", Caption: "fish", Probability: 0.25},
			},
		},
		{
			name:   "extra scores ignored",
			scores: []float64{0.1, 0.1, 0.1, 0.1, 0.6},
			topK:   1,
			want:   []Prediction{{Index: "0", Caption: "cat", Probability: 0.1}},
		},
		{
			name:   "topK larger than labels",
			scores: []float64{0.9, 0.1},
			topK:   10,
			want: []Prediction{
				{Index: "0", Caption: "cat", Probability: 0.9},
				{Index: "1", Caption: "dog", Probability: 0.1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rank(tt.scores, labels, tt.topK); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rank() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
