package compare

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Point2D is an image-plane point used for geometric verification.
type Point2D struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(q Point2D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Homography is a 3x3 planar projective transform in row-major order.
type Homography [3][3]float64

// Apply projects p through the homography. The second return value is false
// when the point maps to infinity (homogeneous scale near zero).
func (h Homography) Apply(p Point2D) (Point2D, bool) {
	w := h[2][0]*p.X + h[2][1]*p.Y + h[2][2]
	if math.Abs(w) < 1e-10 {
		return Point2D{}, false
	}
	return Point2D{
		X: (h[0][0]*p.X + h[0][1]*p.Y + h[0][2]) / w,
		Y: (h[1][0]*p.X + h[1][1]*p.Y + h[1][2]) / w,
	}, true
}

// ransacSeed fixes the sampling sequence so identical inputs always select
// the same model and inlier set, across runs and processes.
const ransacSeed = 1

// estimateHomographyRANSAC estimates a planar homography mapping srcPoints to
// dstPoints, tolerating outlier correspondences. Returns the model and the
// indices of the inlier correspondences.
func estimateHomographyRANSAC(srcPoints, dstPoints []Point2D, iterations int, threshold float64) (Homography, []int, error) {
	if len(srcPoints) != len(dstPoints) || len(srcPoints) < 4 {
		return Homography{}, nil, fmt.Errorf("invalid point sets")
	}

	n := len(srcPoints)
	rng := rand.New(rand.NewSource(ransacSeed))
	bestInliers := []int{}
	var bestModel Homography

	sample := make([]Point2D, 4)
	target := make([]Point2D, 4)
	for iter := 0; iter < iterations; iter++ {
		// Randomly sample 4 distinct correspondences
		indices := sampleFour(rng, n)
		for i, idx := range indices {
			sample[i] = srcPoints[idx]
			target[i] = dstPoints[idx]
		}

		model, err := estimateHomographyDLT(sample, target)
		if err != nil {
			continue
		}

		// Count inliers by reprojection distance
		var inliers []int
		for i := range srcPoints {
			projected, ok := model.Apply(srcPoints[i])
			if !ok {
				continue
			}
			if projected.Distance(dstPoints[i]) < threshold {
				inliers = append(inliers, i)
			}
		}

		if len(inliers) > len(bestInliers) {
			bestInliers = inliers
			bestModel = model
		}
	}

	if len(bestInliers) < 4 {
		return Homography{}, nil, fmt.Errorf("RANSAC failed to find enough inliers")
	}

	// Recompute the model using all inliers
	inlierSrc := make([]Point2D, len(bestInliers))
	inlierDst := make([]Point2D, len(bestInliers))
	for i, idx := range bestInliers {
		inlierSrc[i] = srcPoints[idx]
		inlierDst[i] = dstPoints[idx]
	}

	refined, err := estimateHomographyDLT(inlierSrc, inlierDst)
	if err != nil {
		return bestModel, bestInliers, nil
	}

	return refined, bestInliers, nil
}

// sampleFour draws 4 distinct indices from [0, n) without permuting the
// whole index range.
func sampleFour(rng *rand.Rand, n int) [4]int {
	var out [4]int
	for i := 0; i < 4; {
		c := rng.Intn(n)
		dup := false
		for j := 0; j < i; j++ {
			if out[j] == c {
				dup = true
				break
			}
		}
		if !dup {
			out[i] = c
			i++
		}
	}
	return out
}

// estimateHomographyDLT computes a homography from 4+ point pairs using the
// normalized direct linear transform, solved with SVD.
func estimateHomographyDLT(src, dst []Point2D) (Homography, error) {
	if len(src) != len(dst) || len(src) < 4 {
		return Homography{}, fmt.Errorf("need at least 4 point pairs")
	}

	// Hartley normalization keeps the linear system well conditioned
	normSrc, tSrc := normalizePoints(src)
	normDst, tDst := normalizePoints(dst)

	n := len(src)
	a := mat.NewDense(2*n, 9, nil)
	for i := 0; i < n; i++ {
		x, y := normSrc[i].X, normSrc[i].Y
		xp, yp := normDst[i].X, normDst[i].Y

		a.SetRow(i*2, []float64{-x, -y, -1, 0, 0, 0, x * xp, y * xp, xp})
		a.SetRow(i*2+1, []float64{0, 0, 0, -x, -y, -1, x * yp, y * yp, yp})
	}

	// The solution is the right singular vector with the smallest singular
	// value; with exactly 4 pairs it spans the null space, so a full SVD is
	// required to expose the ninth column of V.
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return Homography{}, fmt.Errorf("SVD factorization failed")
	}

	var v mat.Dense
	svd.VTo(&v)

	var hn Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			hn[i][j] = v.At(i*3+j, 8)
		}
	}

	// Denormalize: H = inv(Tdst) * Hn * Tsrc
	h := multiply3x3(multiply3x3(invertSimilarity(tDst), hn), tSrc)

	if math.Abs(h[2][2]) < 1e-12 {
		return Homography{}, fmt.Errorf("degenerate homography")
	}

	// Fix the scale so H[2][2] == 1
	scale := 1.0 / h[2][2]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h[i][j] *= scale
		}
	}

	return h, nil
}

// normalizePoints translates the centroid to the origin and scales so the
// mean distance from the origin is sqrt(2). Returns the transformed points
// and the similarity transform that produced them.
func normalizePoints(pts []Point2D) ([]Point2D, Homography) {
	n := float64(len(pts))

	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= n
	cy /= n

	var meanDist float64
	for _, p := range pts {
		meanDist += math.Sqrt((p.X-cx)*(p.X-cx) + (p.Y-cy)*(p.Y-cy))
	}
	meanDist /= n

	scale := 1.0
	if meanDist > 1e-12 {
		scale = math.Sqrt2 / meanDist
	}

	t := Homography{
		{scale, 0, -scale * cx},
		{0, scale, -scale * cy},
		{0, 0, 1},
	}

	out := make([]Point2D, len(pts))
	for i, p := range pts {
		out[i] = Point2D{X: scale * (p.X - cx), Y: scale * (p.Y - cy)}
	}

	return out, t
}

// invertSimilarity inverts a normalization transform of the form produced by
// normalizePoints (uniform scale plus translation).
func invertSimilarity(t Homography) Homography {
	s := t[0][0]
	return Homography{
		{1 / s, 0, -t[0][2] / s},
		{0, 1 / s, -t[1][2] / s},
		{0, 0, 1},
	}
}

func multiply3x3(a, b Homography) Homography {
	var out Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}
