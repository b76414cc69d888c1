package compare

import (
	"image"

	"visualgate/imageprocessor"
	"visualgate/types"

	"gocv.io/x/gocv"
)

// TemplateLocalization slides the reference over the candidate with normalized
// cross-correlation and scores the best alignment. A reference larger than the
// candidate in either dimension is first downscaled (aspect preserving) to fit,
// since the template must be no larger than the search image. The matched
// bounding box is detail data for overlay drawing only.
func TemplateLocalization(ref, candidate gocv.Mat, threshold float64) types.ComparisonResult {
	if candidate.Cols() == 0 || candidate.Rows() == 0 || ref.Cols() == 0 || ref.Rows() == 0 {
		return errorResult(types.MethodTemplateLocalization, "zero-size input image")
	}

	template := ref.Clone()
	defer template.Close()

	if template.Cols() > candidate.Cols() || template.Rows() > candidate.Rows() {
		fitted := imageprocessor.ResizeKeepAspect(template, candidate.Cols(), candidate.Rows())
		template.Close()
		template = fitted
	}

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(candidate, template, &result, gocv.TmCcoeffNormed, mask)

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

	box := image.Rect(maxLoc.X, maxLoc.Y, maxLoc.X+template.Cols(), maxLoc.Y+template.Rows())
	score := float64(maxVal)

	return types.ComparisonResult{
		Method: types.MethodTemplateLocalization,
		Score:  clampScore(score),
		Passed: score >= threshold,
		Details: types.TemplateDetails{
			Box:       box,
			TemplateW: template.Cols(),
			TemplateH: template.Rows(),
		},
	}
}
