// Package compare implements the multi-method comparison engine that decides
// whether a captured screenshot matches a reference image. Five independent
// methods each score the same image pair; the aggregator applies per-method
// thresholds and selects one best result.
package compare

import (
	"fmt"
	"math"
	"sort"

	"visualgate/logging"
	"visualgate/types"

	"gocv.io/x/gocv"
)

// Run executes every comparison method against the same reference/candidate
// pair and selects the single best result. Each method runs isolated: a fault
// inside one comparator becomes a score-0 result for that method only, so the
// summary always contains exactly one result per method. Run holds no state
// between invocations.
func Run(ref, candidate gocv.Mat, th types.Thresholds) (types.Summary, error) {
	if ref.Empty() || candidate.Empty() {
		return types.Summary{}, fmt.Errorf("comparison requires two non-empty images")
	}

	results := []types.ComparisonResult{
		evaluate(types.MethodExact, func() types.ComparisonResult {
			return Exact(ref, candidate)
		}),
		evaluate(types.MethodStructuralSimilarity, func() types.ComparisonResult {
			return StructuralSimilarity(ref, candidate, th.SSIM)
		}),
		evaluate(types.MethodPerceptualHash, func() types.ComparisonResult {
			return PerceptualHash(ref, candidate, th.PHash)
		}),
		evaluate(types.MethodTemplateLocalization, func() types.ComparisonResult {
			return TemplateLocalization(ref, candidate, th.Template)
		}),
		evaluate(types.MethodFeatureGeometric, func() types.ComparisonResult {
			return FeatureGeometric(ref, candidate, th.FeatureRatio, th.FeatureMinInliers)
		}),
	}

	for _, r := range results {
		logging.LogComparison(r.Method.String(), r.Score, r.Passed)
	}

	return types.Summary{
		PerMethod:  results,
		Best:       selectBest(results),
		Thresholds: th,
	}, nil
}

// evaluate runs one comparator and converts any internal fault into a
// score-0 result so the remaining methods are unaffected.
func evaluate(m types.Method, fn func() types.ComparisonResult) (res types.ComparisonResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogError("comparator %s fault: %v", m, r)
			res = errorResult(m, fmt.Sprintf("internal fault: %v", r))
		}
	}()
	return fn()
}

func errorResult(m types.Method, msg string) types.ComparisonResult {
	return types.ComparisonResult{
		Method:  m,
		Score:   0.0,
		Passed:  false,
		Details: types.ErrorDetails{Message: msg},
	}
}

// selectionRank is a total order over the method enumeration used to break
// score ties: structural similarity is the most discriminating signal for UI
// screenshots, exact match is a free win when applicable, and perceptual
// hashing is the most tolerant and therefore the last resort.
var selectionRank = [types.NumMethods]int{
	types.MethodStructuralSimilarity: 0,
	types.MethodExact:                1,
	types.MethodTemplateLocalization: 2,
	types.MethodFeatureGeometric:     3,
	types.MethodPerceptualHash:       4,
}

// selectBest picks the best result: passing results are preferred, then the
// highest score, then the fixed method rank on equal scores. A result is
// always produced even when every method fails, so failures stay diagnosable.
func selectBest(results []types.ComparisonResult) types.ComparisonResult {
	pool := make([]types.ComparisonResult, 0, len(results))
	for _, r := range results {
		if r.Passed {
			pool = append(pool, r)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, results...)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Score != pool[j].Score {
			return pool[i].Score > pool[j].Score
		}
		return selectionRank[pool[i].Method] < selectionRank[pool[j].Method]
	})

	return pool[0]
}

// clampScore bounds a native metric value to the normalized [0,1] score range.
// NaN maps to 0: normalized cross-correlation is NaN on zero-variance inputs,
// and a NaN score would make the selection sort unstable.
func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
