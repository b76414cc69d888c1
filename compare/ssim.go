package compare

import (
	"image"

	"visualgate/imageprocessor"
	"visualgate/types"

	"gocv.io/x/gocv"
)

// Gaussian window and stabilization constants for 8-bit structural similarity
const (
	ssimWindow = 11
	ssimSigma  = 1.5
	ssimC1     = 6.5025  // (0.01 * 255)^2
	ssimC2     = 58.5225 // (0.03 * 255)^2
)

// StructuralSimilarity resizes the reference to the candidate's size, converts
// both to grayscale and computes the structural similarity index over the full
// image. The per-pixel difference map (1 - similarity, rescaled to 0-255) is
// attached as detail data for visualization; only the scalar index decides
// pass/fail.
func StructuralSimilarity(ref, candidate gocv.Mat, threshold float64) types.ComparisonResult {
	if candidate.Cols() == 0 || candidate.Rows() == 0 || ref.Cols() == 0 || ref.Rows() == 0 {
		return errorResult(types.MethodStructuralSimilarity, "zero-size input image")
	}

	resized := imageprocessor.ResizeTo(ref, candidate.Cols(), candidate.Rows())
	defer resized.Close()

	grayRef := imageprocessor.ToGrayscale(resized)
	defer grayRef.Close()
	grayCand := imageprocessor.ToGrayscale(candidate)
	defer grayCand.Close()

	score, diffMap := ssimIndex(grayCand, grayRef)

	return types.ComparisonResult{
		Method:  types.MethodStructuralSimilarity,
		Score:   clampScore(score),
		Passed:  score >= threshold,
		Details: types.SSIMDetails{DiffMap: diffMap},
	}
}

// ssimIndex computes the mean structural similarity of two equal-size
// grayscale images plus the rescaled per-pixel difference visualization.
// Local statistics use an 11x11 Gaussian window with sigma 1.5.
func ssimIndex(a, b gocv.Mat) (float64, *image.Gray) {
	fa := gocv.NewMat()
	defer fa.Close()
	fb := gocv.NewMat()
	defer fb.Close()
	a.ConvertTo(&fa, gocv.MatTypeCV32F)
	b.ConvertTo(&fb, gocv.MatTypeCV32F)

	// Local means
	mu1 := blur(fa)
	defer mu1.Close()
	mu2 := blur(fb)
	defer mu2.Close()

	mu1Sq := gocv.NewMat()
	defer mu1Sq.Close()
	gocv.Multiply(mu1, mu1, &mu1Sq)
	mu2Sq := gocv.NewMat()
	defer mu2Sq.Close()
	gocv.Multiply(mu2, mu2, &mu2Sq)
	mu1Mu2 := gocv.NewMat()
	defer mu1Mu2.Close()
	gocv.Multiply(mu1, mu2, &mu1Mu2)

	// Local variances and covariance: E[x^2] - E[x]^2
	aSq := gocv.NewMat()
	defer aSq.Close()
	gocv.Multiply(fa, fa, &aSq)
	bSq := gocv.NewMat()
	defer bSq.Close()
	gocv.Multiply(fb, fb, &bSq)
	ab := gocv.NewMat()
	defer ab.Close()
	gocv.Multiply(fa, fb, &ab)

	sigma1Sq := blur(aSq)
	defer sigma1Sq.Close()
	gocv.Subtract(sigma1Sq, mu1Sq, &sigma1Sq)
	sigma2Sq := blur(bSq)
	defer sigma2Sq.Close()
	gocv.Subtract(sigma2Sq, mu2Sq, &sigma2Sq)
	sigma12 := blur(ab)
	defer sigma12.Close()
	gocv.Subtract(sigma12, mu1Mu2, &sigma12)

	// Numerator: (2*mu1*mu2 + C1) * (2*sigma12 + C2)
	t1 := gocv.NewMat()
	defer t1.Close()
	gocv.Add(mu1Mu2, mu1Mu2, &t1)
	t1.AddFloat(ssimC1)

	t2 := gocv.NewMat()
	defer t2.Close()
	gocv.Add(sigma12, sigma12, &t2)
	t2.AddFloat(ssimC2)

	numerator := gocv.NewMat()
	defer numerator.Close()
	gocv.Multiply(t1, t2, &numerator)

	// Denominator: (mu1^2 + mu2^2 + C1) * (sigma1^2 + sigma2^2 + C2)
	d1 := gocv.NewMat()
	defer d1.Close()
	gocv.Add(mu1Sq, mu2Sq, &d1)
	d1.AddFloat(ssimC1)

	d2 := gocv.NewMat()
	defer d2.Close()
	gocv.Add(sigma1Sq, sigma2Sq, &d2)
	d2.AddFloat(ssimC2)

	denominator := gocv.NewMat()
	defer denominator.Close()
	gocv.Multiply(d1, d2, &denominator)

	ssimMap := gocv.NewMat()
	defer ssimMap.Close()
	gocv.Divide(numerator, denominator, &ssimMap)

	mean := ssimMap.Mean().Val1

	return mean, diffVisualization(ssimMap)
}

func blur(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.GaussianBlur(src, &dst, image.Point{X: ssimWindow, Y: ssimWindow}, ssimSigma, ssimSigma, gocv.BorderDefault)
	return dst
}

// diffVisualization converts a similarity map into the difference image
// shipped in the details: 1 - similarity, linearly rescaled per-image to the
// full 0-255 range using the map's own min and max.
func diffVisualization(ssimMap gocv.Mat) *image.Gray {
	diff := ssimMap.Clone()
	defer diff.Close()
	diff.MultiplyFloat(-1)
	diff.AddFloat(1)

	minVal, maxVal, _, _ := gocv.MinMaxLoc(diff)
	diff.AddFloat(-minVal)
	// Epsilon guards the flat-map case where min == max
	scale := 255.0 / (float64(maxVal-minVal) + 1e-12)
	diff.MultiplyFloat(float32(scale))

	diff8 := gocv.NewMat()
	defer diff8.Close()
	diff.ConvertTo(&diff8, gocv.MatTypeCV8U)

	img, err := diff8.ToImage()
	if err != nil {
		return nil
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil
	}
	return gray
}
