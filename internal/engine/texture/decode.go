// Package texture provides image decoding for mesh textures.
package texture

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// Decode decodes texture image data, picking the decoder from the file
// extension. PNG and JPEG go through image.Decode; TGA has no stdlib
// decoder and is handled locally.
func Decode(data []byte, path string) (image.Image, error) {
	if strings.HasSuffix(strings.ToLower(path), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// ToRGBA converts any image.Image to *image.RGBA, the layout OpenGL
// texture uploads expect.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
