package silhouette

import (
	"gocv.io/x/gocv"
)

// maskToMat converts a binary mask to a single-channel Mat with foreground
// at 255.
func maskToMat(m *mask) gocv.Mat {
	mat := gocv.NewMatWithSize(m.h, m.w, gocv.MatTypeCV8U)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.at(x, y) {
				mat.SetUCharAt(y, x, 255)
			}
		}
	}
	return mat
}

// largestContourAreaFrac finds the largest external contour in the mask and
// returns its area as a fraction of the image, or 0 when the mask is empty.
func largestContourAreaFrac(m *mask) float64 {
	mat := maskToMat(m)
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var best float64
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); a > best {
			best = a
		}
	}
	return best / float64(m.w*m.h)
}

// shapeDistance compares the largest external contours of two masks using
// Hu-moment shape matching. Returns the clamp value when either mask has no
// contour, which scores as maximal dissimilarity.
func shapeDistance(a, b *mask, clampAt float64) float64 {
	ca, okA := largestContour(a)
	if okA {
		defer ca.Close()
	}
	cb, okB := largestContour(b)
	if okB {
		defer cb.Close()
	}
	if !okA || !okB {
		return clampAt
	}

	dist := gocv.MatchShapes(ca, cb, gocv.ContoursMatchI1, 0)
	if dist > clampAt {
		dist = clampAt
	}
	return dist
}

// largestContour extracts the largest external contour of a mask as an
// owned PointVector. The caller must Close it when ok is true.
func largestContour(m *mask) (gocv.PointVector, bool) {
	mat := maskToMat(m)
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	bestIdx := -1
	var bestArea float64
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); a > bestArea {
			bestArea = a
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return gocv.PointVector{}, false
	}
	return gocv.NewPointVectorFromPoints(contours.At(bestIdx).ToPoints()), true
}
