// Package texture decodes image payloads into RGBA pixels for upload.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmpty is returned when there are no bytes to decode.
var ErrEmpty = errors.New("empty image data")

// Decode decodes data into an RGBA image. The mime type selects the TGA
// decoder; everything else goes through the registered image formats, with
// TGA tried last since it has no magic number.
func Decode(data []byte, mimeType string) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	if isTGA(mimeType) {
		return DecodeTGA(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			if tga, tgaErr := DecodeTGA(data); tgaErr == nil {
				return tga, nil
			}
		}
		return nil, fmt.Errorf("decode %s: %w", describe(mimeType), err)
	}
	return ToRGBA(img), nil
}

func isTGA(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case "image/tga", "image/x-tga", "image/x-targa":
		return true
	}
	return false
}

func describe(mimeType string) string {
	if mimeType == "" {
		return "image"
	}
	return mimeType
}

// ToRGBA converts img to *image.RGBA with its origin at (0, 0). An RGBA
// image already at the origin is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}

// Solid returns a 1x1 image filled with c.
func Solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return img
}

// White is the default placeholder color.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
