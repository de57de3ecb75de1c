package silhouette

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maskFromRows(rows []string) *mask {
	h := len(rows)
	w := len(rows[0])
	m := newMask(w, h)
	for y, row := range rows {
		for x, c := range row {
			m.set(x, y, c == '#')
		}
	}
	return m
}

func TestMaskBounds(t *testing.T) {
	m := maskFromRows([]string{
		"....",
		".##.",
		".#..",
		"....",
	})
	box, ok := m.bounds()
	require.True(t, ok)
	assert.Equal(t, image.Rect(1, 1, 3, 3), box)

	empty := newMask(4, 4)
	_, ok = empty.bounds()
	assert.False(t, ok)
}

func TestMaskInverted(t *testing.T) {
	m := maskFromRows([]string{"#.", ".#"})
	inv := m.inverted()
	assert.Equal(t, m.count(), inv.count())
	assert.False(t, inv.at(0, 0))
	assert.True(t, inv.at(1, 0))
}

func TestIoU(t *testing.T) {
	a := maskFromRows([]string{"##..", "##..", "....", "...."})
	assert.InDelta(t, 1.0, iou(a, a), 1e-9)

	b := maskFromRows([]string{".##.", ".##.", "....", "...."})
	// 2 overlapping of 6 total occupied cells.
	assert.InDelta(t, 2.0/6.0, iou(a, b), 1e-9)

	disjoint := maskFromRows([]string{"....", "....", "..##", "..##"})
	assert.Zero(t, iou(a, disjoint))

	empty := newMask(4, 4)
	assert.Zero(t, iou(empty, empty))
}

func TestDownsample(t *testing.T) {
	hist := []float64{1, 1, 2, 2, 3, 3, 4, 4}
	out := downsample(hist, 4)
	require.Len(t, out, 4)

	// Each bin holds its pair, normalized: 2, 4, 6, 8 over 20.
	assert.InDelta(t, 0.1, out[0], 1e-9)
	assert.InDelta(t, 0.2, out[1], 1e-9)
	assert.InDelta(t, 0.3, out[2], 1e-9)
	assert.InDelta(t, 0.4, out[3], 1e-9)

	// All-zero input stays zero without dividing by zero.
	zeros := downsample(make([]float64, 8), 4)
	for _, v := range zeros {
		assert.Zero(t, v)
	}
}

func TestProfileSimilarity(t *testing.T) {
	a := []float64{0.25, 0.25, 0.25, 0.25}
	assert.InDelta(t, 1.0, profileSimilarity(a, a), 1e-9)

	b := []float64{1, 0, 0, 0}
	assert.InDelta(t, 0.25, profileSimilarity(a, b), 1e-9)

	c := []float64{0, 0, 0, 1}
	assert.Zero(t, profileSimilarity(b, c))
}

// figureImage renders a dark subject on a near-white background.
func figureImage(w, h int, subject image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 250, G: 250, B: 250, A: 255}
			if image.Pt(x, y).In(subject) {
				c = color.RGBA{R: 40, G: 40, B: 40, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSegmentFindsDarkSubject(t *testing.T) {
	subject := image.Rect(30, 20, 70, 90)
	m := segment(figureImage(100, 100, subject), DefaultParams())

	box, ok := m.bounds()
	require.True(t, ok)
	assert.Equal(t, subject, box)
	assert.Equal(t, subject.Dx()*subject.Dy(), m.count())
}

func TestSegmentFindsTintedSubject(t *testing.T) {
	// A pale tint close to background brightness: only the distance-from-
	// white clause can catch it.
	subject := image.Rect(40, 40, 60, 60)
	img := figureImage(100, 100, image.Rectangle{})
	for y := subject.Min.Y; y < subject.Max.Y; y++ {
		for x := subject.Min.X; x < subject.Max.X; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 240, B: 240, A: 255})
		}
	}

	m := segment(img, DefaultParams())
	box, ok := m.bounds()
	require.True(t, ok)
	assert.Equal(t, subject, box)
}

func TestNormalizeIsTranslationInvariant(t *testing.T) {
	p := DefaultParams()

	a := segment(figureImage(100, 100, image.Rect(10, 10, 30, 60)), p)
	b := segment(figureImage(100, 100, image.Rect(60, 30, 80, 80)), p)

	na := normalize(a, p)
	nb := normalize(b, p)
	assert.InDelta(t, 1.0, iou(na, nb), 0.02)
}

func TestNormalizeEmptyMask(t *testing.T) {
	p := DefaultParams()
	out := normalize(newMask(10, 10), p)
	assert.Equal(t, p.CanonicalSize, out.w)
	assert.Equal(t, p.CanonicalSize, out.h)
	assert.Zero(t, out.count())
}
