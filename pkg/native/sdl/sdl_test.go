package sdl

import (
	"image"
	"image/color"
	"testing"
)

func TestToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 14, 12))
	src.Set(10, 10, color.NRGBA{R: 255, A: 255})

	dst := toRGBA(src, nil)
	if dst.Rect.Dx() != 4 || dst.Rect.Dy() != 2 || dst.Rect.Min != (image.Point{}) {
		t.Fatalf("wrong bounds %v", dst.Rect)
	}
	if r, _, _, _ := dst.At(0, 0).RGBA(); r != 0xffff {
		t.Errorf("pixel is not copied")
	}
	if again := toRGBA(src, dst); again != dst {
		t.Errorf("same size image should be reused")
	}
	if bigger := toRGBA(image.NewGray(image.Rect(0, 0, 8, 8)), dst); bigger == dst {
		t.Errorf("image of another size should be reallocated")
	}
}

func TestSurfaceSize(t *testing.T) {
	if _, err := (Surface{W: 0, H: 10}).CreateWindow(); err == nil {
		t.Errorf("expected an error")
	}
}
