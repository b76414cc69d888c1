package imageprocessor

import (
	"image"

	"gocv.io/x/gocv"
)

// ResizeTo returns a copy of img scaled to exactly width x height using
// area-averaging interpolation. The caller owns the returned Mat.
func ResizeTo(img gocv.Mat, width, height int) gocv.Mat {
	if img.Cols() == width && img.Rows() == height {
		return img.Clone()
	}

	dst := gocv.NewMat()
	gocv.Resize(img, &dst, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationArea)
	return dst
}

// ResizeKeepAspect scales img down preserving its aspect ratio so it fits
// within maxW x maxH. Images already within the bounds are returned as a
// clone; this never upscales.
func ResizeKeepAspect(img gocv.Mat, maxW, maxH int) gocv.Mat {
	w := img.Cols()
	h := img.Rows()

	scale := minFloat(float64(maxW)/float64(w), float64(maxH)/float64(h))
	if scale >= 1.0 {
		return img.Clone()
	}

	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := gocv.NewMat()
	gocv.Resize(img, &dst, image.Point{X: newW, Y: newH}, 0, 0, gocv.InterpolationArea)
	return dst
}

// ToGrayscale returns a single-channel luminance projection of img.
// The caller owns the returned Mat.
func ToGrayscale(img gocv.Mat) gocv.Mat {
	if img.Channels() == 1 {
		return img.Clone()
	}

	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	return gray
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
