package compare

import (
	"visualgate/imageprocessor"
	"visualgate/types"

	"gocv.io/x/gocv"
)

// Exact resizes the reference to the candidate's exact dimensions and checks
// element-wise equality across all pixels and channels. The score is binary
// and passing is the equality itself; byte-identical renders (static UI
// chrome) are caught here before the expensive methods run.
func Exact(ref, candidate gocv.Mat) types.ComparisonResult {
	if candidate.Cols() == 0 || candidate.Rows() == 0 || ref.Cols() == 0 || ref.Rows() == 0 {
		return errorResult(types.MethodExact, "zero-size input image")
	}

	resized := imageprocessor.ResizeTo(ref, candidate.Cols(), candidate.Rows())
	defer resized.Close()

	if resized.Type() != candidate.Type() {
		return errorResult(types.MethodExact, "incompatible image types after normalization")
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(resized, candidate, &diff)

	var mismatched int64
	channels := gocv.Split(diff)
	for _, ch := range channels {
		mismatched += int64(gocv.CountNonZero(ch))
		ch.Close()
	}

	score := 0.0
	if mismatched == 0 {
		score = 1.0
	}

	return types.ComparisonResult{
		Method:  types.MethodExact,
		Score:   score,
		Passed:  mismatched == 0,
		Details: types.ExactDetails{MismatchedValues: mismatched},
	}
}
