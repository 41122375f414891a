package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodeTestImage(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return &buf
}

func TestNormalizeImageReencodesAsJPEG(t *testing.T) {
	src := encodeTestImage(t, 400, 300)

	data, err := NormalizeImage(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 400 || bounds.Dy() != 300 {
		t.Errorf("small image should keep its size, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeImageScalesDownWideImages(t *testing.T) {
	src := encodeTestImage(t, 3200, 800)

	data, err := NormalizeImage(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != maxImageWidth {
		t.Errorf("expected width %d, got %d", maxImageWidth, bounds.Dx())
	}
	// Aspect ratio preserved: 3200x800 -> 1600x400.
	if bounds.Dy() != 400 {
		t.Errorf("expected height 400, got %d", bounds.Dy())
	}
}

func TestNormalizeImageRejectsNonImageData(t *testing.T) {
	_, err := NormalizeImage(strings.NewReader("definitely not an image"))
	if err == nil {
		t.Fatal("expected error for non-image payload")
	}
}
