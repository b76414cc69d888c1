package compare

import (
	"visualgate/types"

	"github.com/corona10/goimagehash"
	"gocv.io/x/gocv"
)

// phashBits is the fingerprint length used to remap Hamming distance to [0,1]
const phashBits = 64

// PerceptualHash fingerprints both images independently and scores them by
// Hamming distance (score = 1 - distance/64). The hash already abstracts over
// resolution and minor distortion, so no resize happens here. This is the most
// tolerant method and serves as a fallback signal, not a primary gate.
func PerceptualHash(ref, candidate gocv.Mat, threshold float64) types.ComparisonResult {
	refImg, err := ref.ToImage()
	if err != nil {
		return errorResult(types.MethodPerceptualHash, "reference is not convertible to a raster: "+err.Error())
	}
	candImg, err := candidate.ToImage()
	if err != nil {
		return errorResult(types.MethodPerceptualHash, "candidate is not convertible to a raster: "+err.Error())
	}

	refHash, err := goimagehash.PerceptionHash(refImg)
	if err != nil {
		return errorResult(types.MethodPerceptualHash, "reference hash: "+err.Error())
	}
	candHash, err := goimagehash.PerceptionHash(candImg)
	if err != nil {
		return errorResult(types.MethodPerceptualHash, "candidate hash: "+err.Error())
	}

	distance, err := refHash.Distance(candHash)
	if err != nil {
		return errorResult(types.MethodPerceptualHash, "hash distance: "+err.Error())
	}

	score := 1.0 - float64(distance)/phashBits

	return types.ComparisonResult{
		Method: types.MethodPerceptualHash,
		Score:  clampScore(score),
		Passed: score >= threshold,
		Details: types.PHashDetails{
			Distance:      distance,
			RefHash:       refHash.ToString(),
			CandidateHash: candHash.ToString(),
		},
	}
}
