package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-url/pkg/transform"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

func TestApplyScalePreservesAspectRatio(t *testing.T) {
	r := New()
	img := createTestImage(400, 300)

	out, err := r.Apply(img, transform.Options{Width: transform.Px(200)})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	bounds := out.Bounds()
	if bounds.Dx() != 200 || bounds.Dy() != 150 {
		t.Errorf("Expected 200x150, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestApplyFill(t *testing.T) {
	r := New()
	img := createTestImage(400, 300)

	out, err := r.Apply(img, transform.Options{
		Width:  transform.Px(100),
		Height: transform.Px(100),
		Crop:   "fill",
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	bounds := out.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("Expected 100x100, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestApplyNoDimensionsIsIdentity(t *testing.T) {
	r := New()
	img := createTestImage(40, 30)

	out, err := r.Apply(img, transform.Options{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != img {
		t.Error("Expected the original image back")
	}
}

func TestApplyRejectsSentinel(t *testing.T) {
	r := New()
	img := createTestImage(40, 30)

	if _, err := r.Apply(img, transform.Options{Width: transform.NaN()}); err == nil {
		t.Error("Expected error for NaN dimension")
	}
}

func TestApplyRejectsUnknownCrop(t *testing.T) {
	r := New()
	img := createTestImage(40, 30)

	opts := transform.Options{Width: transform.Px(10), Height: transform.Px(10), Crop: "liquid"}
	if _, err := r.Apply(img, opts); err == nil {
		t.Error("Expected error for unknown crop mode")
	}
}

func TestEncodeDecodeWebP(t *testing.T) {
	r := New()
	img := createTestImage(64, 48)

	var buf bytes.Buffer
	if err := r.Encode(&buf, img, "webp", 90); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 48 {
		t.Errorf("Expected 64x48 after roundtrip, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	r := New()
	img := createTestImage(8, 8)

	var buf bytes.Buffer
	if err := r.Encode(&buf, img, "tiff", 90); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestRenderAppliesAndEncodes(t *testing.T) {
	r := New()
	img := createTestImage(400, 300)

	var buf bytes.Buffer
	opts := transform.Options{Width: transform.Px(100), Format: "png"}
	if err := r.Render(&buf, img, opts); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	decoded, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if decoded.Bounds().Dx() != 100 {
		t.Errorf("Expected width 100, got %d", decoded.Bounds().Dx())
	}
}

func TestAnchorFor(t *testing.T) {
	cases := map[string]imaging.Anchor{
		"north":       imaging.Top,
		"south_west":  imaging.BottomLeft,
		"0.5,0.5":     imaging.Center,
		"0.9,0.1":     imaging.TopRight,
		"0.1,0.5":     imaging.Left,
		"0.5,0.9":     imaging.Bottom,
		"":            imaging.Center,
		"not-gravity": imaging.Center,
	}

	for gravity, expected := range cases {
		if got := anchorFor(gravity); got != expected {
			t.Errorf("anchorFor(%q) = %v, expected %v", gravity, got, expected)
		}
	}
}
