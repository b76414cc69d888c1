package compare

import (
	"visualgate/imageprocessor"
	"visualgate/types"

	"gocv.io/x/gocv"
)

const (
	orbFeatures      = 1500
	minKeypoints     = 10
	minGoodMatches   = 8
	loweRatio        = 0.75
	ransacIterations = 2000
	reprojTolerance  = 5.0 // pixels
)

// FeatureGeometric detects oriented keypoints with binary descriptors on both
// grayscale images, matches them with a ratio test, and verifies the matches
// geometrically with a RANSAC homography. Score = inliers / good matches.
// Passing requires both the ratio threshold and an absolute minimum inlier
// count: a high ratio computed from very few matches is statistically weak.
func FeatureGeometric(ref, candidate gocv.Mat, ratioThreshold float64, minInliers int) types.ComparisonResult {
	if candidate.Cols() == 0 || candidate.Rows() == 0 || ref.Cols() == 0 || ref.Rows() == 0 {
		return errorResult(types.MethodFeatureGeometric, "zero-size input image")
	}

	grayRef := imageprocessor.ToGrayscale(ref)
	defer grayRef.Close()
	grayCand := imageprocessor.ToGrayscale(candidate)
	defer grayCand.Close()

	orb := gocv.NewORBWithParams(orbFeatures, 1.2, 8, 31, 0, 2, gocv.ORBScoreTypeHarris, 31, 20)
	defer orb.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	refKeypoints, refDescriptors := orb.DetectAndCompute(grayRef, mask)
	defer refDescriptors.Close()
	candKeypoints, candDescriptors := orb.DetectAndCompute(grayCand, mask)
	defer candDescriptors.Close()

	details := types.FeatureDetails{
		RefKeypoints:       len(refKeypoints),
		CandidateKeypoints: len(candKeypoints),
	}

	// Blank or degenerate images yield no meaningful features to compare
	if len(refKeypoints) < minKeypoints || len(candKeypoints) < minKeypoints ||
		refDescriptors.Empty() || candDescriptors.Empty() {
		return featureResult(0.0, false, details)
	}

	matcher := gocv.NewBFMatcherWithParams(gocv.NormHamming, false)
	defer matcher.Close()

	good := ratioTest(matcher.KnnMatch(refDescriptors, candDescriptors, 2))
	details.GoodMatches = len(good)

	// Geometric verification is unreliable below this many correspondences
	if len(good) < minGoodMatches {
		return featureResult(0.0, false, details)
	}

	srcPoints := make([]Point2D, len(good))
	dstPoints := make([]Point2D, len(good))
	for i, m := range good {
		kpRef := refKeypoints[m.QueryIdx]
		kpCand := candKeypoints[m.TrainIdx]
		srcPoints[i] = Point2D{X: kpRef.X, Y: kpRef.Y}
		dstPoints[i] = Point2D{X: kpCand.X, Y: kpCand.Y}
	}

	_, inliers, err := estimateHomographyRANSAC(srcPoints, dstPoints, ransacIterations, reprojTolerance)
	if err != nil {
		// Estimation failure is a defined score-0 outcome, not an error
		return featureResult(0.0, false, details)
	}

	details.Inliers = len(inliers)
	score := float64(len(inliers)) / float64(len(good))
	passed := score >= ratioThreshold && len(inliers) >= minInliers

	return featureResult(score, passed, details)
}

// ratioTest keeps a match only when its best distance is well below the
// second best, rejecting ambiguous correspondences.
func ratioTest(knnMatches [][]gocv.DMatch) []gocv.DMatch {
	good := make([]gocv.DMatch, 0, len(knnMatches))
	for _, pair := range knnMatches {
		if len(pair) < 2 {
			continue
		}
		if pair[0].Distance < loweRatio*pair[1].Distance {
			good = append(good, pair[0])
		}
	}
	return good
}

func featureResult(score float64, passed bool, details types.FeatureDetails) types.ComparisonResult {
	return types.ComparisonResult{
		Method:  types.MethodFeatureGeometric,
		Score:   clampScore(score),
		Passed:  passed,
		Details: details,
	}
}
