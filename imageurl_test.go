package imageurl

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/menta2k/image-url/pkg/builder"
	"github.com/menta2k/image-url/pkg/transform"
)

func TestComposerURL(t *testing.T) {
	composer := New(builder.Config{BaseURL: "https://img.example.com"})

	url, err := composer.URL(
		transform.Size{Width: transform.Px(400)},
		transform.Attrs{Src: "photos/cat.jpg", Width: transform.Px(800), Height: transform.Px(600)},
		transform.Options{Format: "webp", Quality: 80},
	)
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}

	expected := "https://img.example.com/photos/cat.jpg?width=400&height=300&format=webp&quality=80"
	if url != expected {
		t.Errorf("Expected %q, got %q", expected, url)
	}
}

func TestComposerWithPathBuilder(t *testing.T) {
	composer := NewWithBuilder(builder.NewPathBuilder(), builder.Config{BaseURL: "https://img.example.com"})

	url, err := composer.URL(
		transform.Size{},
		transform.Attrs{Src: "cat.jpg"},
		transform.Options{Width: transform.Px(320), Format: "webp"},
	)
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}

	expected := "https://img.example.com/w_320,f_webp/cat.jpg"
	if url != expected {
		t.Errorf("Expected %q, got %q", expected, url)
	}
}

func TestComposerResolve(t *testing.T) {
	composer := New(builder.Config{BaseURL: "https://img.example.com"})

	r := composer.Resolve(
		transform.Size{Width: transform.Px(400)},
		transform.Attrs{Width: transform.Px(800), Height: transform.Px(600)},
		transform.Options{},
	)

	if r.Options.Width.Value() != 400 || r.Options.Height.Value() != 300 {
		t.Errorf("Expected 400x300, got %vx%v", r.Options.Width.Value(), r.Options.Height.Value())
	}
	if r.Config.Transformations.Width.Value() != 400 {
		t.Error("Expected transformations to carry the final width")
	}
}

func TestFocusedURLWithoutDetector(t *testing.T) {
	composer := New(builder.Config{BaseURL: "https://img.example.com"})

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	_, err := composer.FocusedURL(context.Background(), img,
		transform.Size{}, transform.Attrs{Src: "cat.jpg"}, transform.Options{})
	if !errors.Is(err, ErrNoDetector) {
		t.Errorf("Expected ErrNoDetector, got %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Error("GetVersion should return Version")
	}
}
