package edgemap

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatImage(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// rectImage draws a dark rectangle on a light background.
func rectImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 235, G: 235, B: 235, A: 255}
			if x >= w/4 && x < 3*w/4 && y >= h/4 && y < 3*h/4 {
				c = color.RGBA{R: 20, G: 20, B: 20, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func edgeCount(edges *image.Gray) int {
	n := 0
	for _, v := range edges.Pix {
		if v < 128 {
			n++
		}
	}
	return n
}

func TestBuildFlatImageHasNoEdges(t *testing.T) {
	_, err := Build(flatImage(64, 64, 128), DefaultParams())
	assert.ErrorIs(t, err, ErrNoUsableEdges)
}

func TestBuildTinyImageHasNoEdges(t *testing.T) {
	_, err := Build(flatImage(3, 3, 128), DefaultParams())
	assert.ErrorIs(t, err, ErrNoUsableEdges)
}

func TestBuildRectangleProducesOutline(t *testing.T) {
	img := rectImage(100, 100)
	edges, err := Build(img, DefaultParams())
	require.NoError(t, err)

	require.Equal(t, img.Bounds().Dx(), edges.Bounds().Dx())
	require.Equal(t, img.Bounds().Dy(), edges.Bounds().Dy())

	count := edgeCount(edges)
	total := edges.Bounds().Dx() * edges.Bounds().Dy()
	assert.Greater(t, count, 0)
	// An outline should be sparse, nowhere near a filled region.
	assert.Less(t, float64(count)/float64(total), 0.25)

	// The rectangle border must be detected; sample a point on the top edge.
	assert.Less(t, edges.GrayAt(50, 25).Y, uint8(128))
	// The rectangle interior stays blank.
	assert.Equal(t, uint8(255), edges.GrayAt(50, 50).Y)
}

func TestBuildDeterministic(t *testing.T) {
	img := rectImage(80, 80)
	a, err := Build(img, DefaultParams())
	require.NoError(t, err)
	b, err := Build(img, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestBuildDensityFloor(t *testing.T) {
	p := DefaultParams()
	p.MinEdgeDensity = 0.9 // no real image clears this

	_, err := Build(rectImage(100, 100), p)
	assert.ErrorIs(t, err, ErrNoUsableEdges)
}
