package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// flipToImage turns a bottom-up RGBA pixel block, as OpenGL reads it,
// into a top-down image.
func flipToImage(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcY := height - 1 - y
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[srcY*rowSize:srcY*rowSize+rowSize])
	}
	return img, nil
}

// Screenshot reads the framebuffer and writes it as a timestamped PNG
// under the screenshots directory, returning the written path. Call it
// after the frame has been drawn and before the buffers swap.
func (r *Renderer) Screenshot(width, height int, prefix string) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid viewport %dx%d", width, height)
	}

	pixels := make([]byte, width*height*4)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))

	img, err := flipToImage(pixels, width, height)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll("screenshots", 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join("screenshots", fmt.Sprintf("%s_%s.png", prefix, timestamp))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	return path, nil
}
