// Package imageutil provides image decoding, orientation correction, and
// shared pixel-level helpers.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes PNG, JPEG, TIFF, or WebP image bytes.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// DecodeOriented decodes image bytes and applies the EXIF orientation, if
// present, so that downstream detection always sees upright pixels.
func DecodeOriented(data []byte) (image.Image, string, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, "", err
	}
	if o := readOrientation(data); o > 1 {
		img = applyOrientation(img, o)
	}
	return img, format, nil
}

// Grayscale converts an image to 8-bit grayscale using BT.601 luma weights.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := (299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(luma)})
		}
	}
	return gray
}

// ToRGBA returns the image as *image.RGBA, copying only when necessary.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// Resize scales an image to the given dimensions with Catmull-Rom
// interpolation.
func Resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// applyOrientation remaps pixels for EXIF orientations 2 through 8.
func applyOrientation(img image.Image, orientation int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var dst *image.RGBA
	switch orientation {
	case 5, 6, 7, 8: // Transposed cases swap dimensions
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	default:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch orientation {
			case 2: // Mirror horizontal
				dst.Set(w-1-x, y, c)
			case 3: // Rotate 180
				dst.Set(w-1-x, h-1-y, c)
			case 4: // Mirror vertical
				dst.Set(x, h-1-y, c)
			case 5: // Mirror horizontal + rotate 270 CW
				dst.Set(y, x, c)
			case 6: // Rotate 90 CW
				dst.Set(h-1-y, x, c)
			case 7: // Mirror horizontal + rotate 90 CW
				dst.Set(h-1-y, w-1-x, c)
			case 8: // Rotate 270 CW
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}
