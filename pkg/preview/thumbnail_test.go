package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"Already small", 100, 50, 160, 90, 100, 50},
		{"Wide screen", 1280, 720, 160, 90, 160, 90},
		{"Tall image", 400, 800, 160, 90, 45, 90},
		{"Wide strip", 2000, 10, 160, 90, 160, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitSize(tt.srcW, tt.srcH, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 360))
	for y := 0; y < 360; y++ {
		for x := 0; x < 640; x++ {
			src.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	data, err := Thumbnail(src, 160, 90)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("thumbnail is not a valid PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 160 || b.Dy() != 90 {
		t.Errorf("thumbnail size = %dx%d, want 160x90", b.Dx(), b.Dy())
	}

	r, _, _, _ := decoded.At(80, 45).RGBA()
	if r>>8 < 190 {
		t.Errorf("center pixel red = %d, want ~200", r>>8)
	}
}

func TestThumbnailInvalid(t *testing.T) {
	if _, err := Thumbnail(nil, 10, 10); err == nil {
		t.Error("expected error for nil image")
	}
	if _, err := Thumbnail(image.NewRGBA(image.Rect(0, 0, 4, 4)), 0, 10); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := Thumbnail(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10, 10); err == nil {
		t.Error("expected error for empty image")
	}
}
