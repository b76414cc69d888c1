package compare

import (
	"math"
	"testing"

	"visualgate/types"
)

func TestSelectBestHighestScoreWins(t *testing.T) {
	// Priority order must not override a strictly higher score
	results := []types.ComparisonResult{
		{Method: types.MethodExact, Score: 1.0, Passed: true},
		{Method: types.MethodStructuralSimilarity, Score: 0.99, Passed: true},
		{Method: types.MethodPerceptualHash, Score: 0.95, Passed: true},
	}

	best := selectBest(results)
	if best.Method != types.MethodExact {
		t.Errorf("best.Method = %v, want %v", best.Method, types.MethodExact)
	}
}

func TestSelectBestTieBreakByRank(t *testing.T) {
	tests := []struct {
		name    string
		results []types.ComparisonResult
		want    types.Method
	}{
		{
			name: "ssim beats template on equal score",
			results: []types.ComparisonResult{
				{Method: types.MethodTemplateLocalization, Score: 0.99, Passed: true},
				{Method: types.MethodStructuralSimilarity, Score: 0.99, Passed: true},
			},
			want: types.MethodStructuralSimilarity,
		},
		{
			name: "exact beats feature on equal score",
			results: []types.ComparisonResult{
				{Method: types.MethodFeatureGeometric, Score: 0.5, Passed: true},
				{Method: types.MethodExact, Score: 0.5, Passed: true},
			},
			want: types.MethodExact,
		},
		{
			name: "phash loses every tie",
			results: []types.ComparisonResult{
				{Method: types.MethodPerceptualHash, Score: 0.97, Passed: true},
				{Method: types.MethodFeatureGeometric, Score: 0.97, Passed: true},
			},
			want: types.MethodFeatureGeometric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := selectBest(tt.results)
			if best.Method != tt.want {
				t.Errorf("best.Method = %v, want %v", best.Method, tt.want)
			}
		})
	}
}

func TestSelectBestPassedPoolPreferred(t *testing.T) {
	// A lower-scoring passing result outranks a higher-scoring failure
	results := []types.ComparisonResult{
		{Method: types.MethodStructuralSimilarity, Score: 0.97, Passed: false},
		{Method: types.MethodPerceptualHash, Score: 0.92, Passed: true},
	}

	best := selectBest(results)
	if best.Method != types.MethodPerceptualHash {
		t.Errorf("best.Method = %v, want %v", best.Method, types.MethodPerceptualHash)
	}
}

func TestSelectBestAllFailedStillProducesBest(t *testing.T) {
	results := []types.ComparisonResult{
		{Method: types.MethodExact, Score: 0.0, Passed: false},
		{Method: types.MethodStructuralSimilarity, Score: 0.41, Passed: false},
		{Method: types.MethodPerceptualHash, Score: 0.6, Passed: false},
	}

	best := selectBest(results)
	if best.Passed {
		t.Error("best.Passed should be false when no method passed")
	}
	if best.Method != types.MethodPerceptualHash {
		t.Errorf("best.Method = %v, want highest-scoring failure %v",
			best.Method, types.MethodPerceptualHash)
	}
}

func TestSelectionRankCoversEveryMethod(t *testing.T) {
	// The rank must be a total order over the enumeration: every method has
	// a distinct position and no method falls back to a default
	seen := make(map[int]types.Method)
	for m := 0; m < types.NumMethods; m++ {
		rank := selectionRank[m]
		if prev, ok := seen[rank]; ok {
			t.Errorf("methods %v and %v share rank %d", prev, types.Method(m), rank)
		}
		if rank < 0 || rank >= types.NumMethods {
			t.Errorf("method %v has out-of-range rank %d", types.Method(m), rank)
		}
		seen[rank] = types.Method(m)
	}
}

func TestEvaluateConvertsPanicToErrorResult(t *testing.T) {
	res := evaluate(types.MethodExact, func() types.ComparisonResult {
		panic("boom")
	})

	if res.Score != 0.0 || res.Passed {
		t.Errorf("panicking comparator: score=%v passed=%v, want 0.0/false", res.Score, res.Passed)
	}
	if _, ok := res.Details.(types.ErrorDetails); !ok {
		t.Errorf("details = %T, want ErrorDetails", res.Details)
	}
	if res.Method != types.MethodExact {
		t.Errorf("method = %v, want %v", res.Method, types.MethodExact)
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.3, 0.0},
		{0.0, 0.0},
		{0.5, 0.5},
		{1.0, 1.0},
		{1.2, 1.0},
		{math.NaN(), 0.0},
	}

	for _, tt := range tests {
		if got := clampScore(tt.in); got != tt.want {
			t.Errorf("clampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
