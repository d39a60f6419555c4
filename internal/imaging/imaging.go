// Package imaging decodes uploaded images and exposes their greyscale plane.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxPixels caps the declared canvas of an upload. 25 MP covers phone
// photos and 300 dpi scans of an A4 page.
const MaxPixels = 25_000_000

var (
	// ErrEmptyImage is returned when there are no bytes to decode.
	ErrEmptyImage = errors.New("empty image")
	// ErrImageTooLarge is returned when the header declares more than MaxPixels.
	ErrImageTooLarge = errors.New("image dimensions exceed limit")
)

// Decode decodes any registered image format and returns the format name.
// The header is read first so a small file declaring a huge canvas is
// rejected before any pixel buffer is allocated.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	return img, format, nil
}

// GrayPlane is a row-major greyscale pixel plane, one byte per pixel.
type GrayPlane struct {
	Width  int
	Height int
	Pix    []uint8
}

// At returns the pixel at (x, y). Callers must stay within bounds.
func (p GrayPlane) At(x, y int) uint8 {
	return p.Pix[y*p.Width+x]
}

// Gray flattens img into a tightly packed greyscale plane.
func Gray(img image.Image) GrayPlane {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := GrayPlane{Width: w, Height: h, Pix: make([]uint8, w*h)}

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			row := g.Pix[y*g.Stride : y*g.Stride+w]
			copy(plane.Pix[y*w:(y+1)*w], row)
		}
		return plane
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			plane.Pix[y*w+x] = c.Y
		}
	}

	return plane
}
