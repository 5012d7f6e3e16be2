// Package render turns flattened pixel vectors back into images so an
// attack can be inspected by eye: the original digit, the amplified
// perturbation, and the adversarial result.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// Gray renders a flattened intensity vector as a w by h grayscale
// image. Values are clamped to [0, 1] before quantization.
func Gray(x []float64, w, h int) (*image.Gray, error) {
	if len(x) != w*h {
		return nil, fmt.Errorf("render: %d values cannot fill a %dx%d image", len(x), w, h)
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range x {
		img.Pix[i] = quantize(v)
	}
	return img, nil
}

// Diff renders the difference b-a, amplified by gain and centered on
// mid-gray, so a perturbation too small to see survives inspection.
func Diff(a, b []float64, w, h int, gain float64) (*image.Gray, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("render: mismatched vectors (%d vs %d)", len(a), len(b))
	}
	diff := make([]float64, len(a))
	for i := range a {
		diff[i] = 0.5 + gain*(b[i]-a[i])
	}
	return Gray(diff, w, h)
}

// Triptych lays images out left to right on a white background with pad
// pixels between them.
func Triptych(pad int, images ...image.Image) *image.RGBA {
	var width, height int
	for _, img := range images {
		bounds := img.Bounds()
		width += bounds.Dx()
		if bounds.Dy() > height {
			height = bounds.Dy()
		}
	}
	width += pad * (len(images) + 1)
	height += pad * 2

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	x := pad
	for _, img := range images {
		bounds := img.Bounds()
		dst := image.Rect(x, pad, x+bounds.Dx(), pad+bounds.Dy())
		draw.Draw(out, dst, img, bounds.Min, draw.Src)
		x += bounds.Dx() + pad
	}
	return out
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func quantize(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
