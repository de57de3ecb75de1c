package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 6))
	src.SetRGBA(2, 3, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	img, format, err := Decode(encodeTestPNG(t, src))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestDecodeJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	_, format, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestDecodeOrientedPlainJPEGUnchanged(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 12, 20))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	img, _, err := DecodeOriented(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestGrayscaleLuma(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{A: 255})
	src.SetRGBA(2, 0, color.RGBA{R: 255, A: 255})

	gray := Grayscale(src)
	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(1, 0).Y)
	// Pure red lands at the BT.601 red weight.
	assert.InDelta(t, 76, float64(gray.GrayAt(2, 0).Y), 1)
}

func TestGrayscaleOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 14, 23))
	gray := Grayscale(src)
	assert.Equal(t, 4, gray.Rect.Dx())
	assert.Equal(t, 3, gray.Rect.Dy())
}

func TestToRGBAPassthrough(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.Same(t, src, ToRGBA(src))
}

func TestToRGBAConverts(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	src.SetGray(1, 1, color.Gray{Y: 77})

	rgba := ToRGBA(src)
	c := rgba.RGBAAt(1, 1)
	assert.Equal(t, uint8(77), c.R)
	assert.Equal(t, uint8(77), c.G)
	assert.Equal(t, uint8(77), c.B)
}

func TestResize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}

	out := Resize(src, 40, 20)
	assert.Equal(t, 40, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
	assert.InDelta(t, 128, float64(out.RGBAAt(20, 10).R), 2)
}

func TestReadOrientationFromCraftedJPEG(t *testing.T) {
	// Minimal JPEG prefix: SOI, then an APP1 Exif segment carrying a TIFF
	// header whose IFD0 holds orientation tag 0x0112 = 6.
	tiff := []byte{
		'I', 'I', 42, 0, // little-endian TIFF header
		8, 0, 0, 0, // IFD0 offset
		1, 0, // one entry
		0x12, 0x01, // orientation tag
		3, 0, // SHORT
		1, 0, 0, 0, // count
		6, 0, 0, 0, // value
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	segment := append([]byte{0xFF, 0xE1, byte((len(payload) + 2) >> 8), byte(len(payload) + 2)}, payload...)
	data := append([]byte{0xFF, 0xD8}, segment...)

	assert.Equal(t, 6, readOrientation(data))
}

func TestReadOrientationAbsent(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	assert.Equal(t, 0, readOrientation(encodeTestPNG(t, src)))

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))
	assert.Equal(t, 0, readOrientation(buf.Bytes()))
}

func TestApplyOrientationRotate90(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	marked := color.RGBA{R: 200, A: 255}
	src.SetRGBA(0, 0, marked)

	out := applyOrientation(src, 6).(*image.RGBA)
	assert.Equal(t, 2, out.Bounds().Dx())
	assert.Equal(t, 3, out.Bounds().Dy())
	// Top-left lands at top-right under a 90° clockwise rotation.
	assert.Equal(t, marked, out.RGBAAt(1, 0))
}
