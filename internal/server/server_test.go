package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	imageurl "github.com/menta2k/image-url"
	"github.com/menta2k/image-url/pkg/builder"
	"github.com/menta2k/image-url/pkg/render"
)

func newTestRouter() *Router {
	composer := imageurl.New(builder.Config{BaseURL: "https://img.example.com"})
	return New(composer, render.New())
}

func TestURLHandler(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/v1/url?src=photos/cat.jpg&width=800&height=600&ow=400&format=webp", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp urlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	expected := "https://img.example.com/photos/cat.jpg?width=400&height=300&format=webp"
	if resp.URL != expected {
		t.Errorf("Expected %q, got %q", expected, resp.URL)
	}
	if resp.Width.Value() != 400 || resp.Height.Value() != 300 {
		t.Errorf("Expected 400x300, got %vx%v", resp.Width.Value(), resp.Height.Value())
	}
	if resp.RequestID == "" {
		t.Error("Expected a request id")
	}
}

func TestURLHandlerMissingSource(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/v1/url?width=800", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestURLHandlerExtensionParams(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/v1/url?src=cat.jpg&t_blur=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp urlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.URL != "https://img.example.com/cat.jpg?blur=5" {
		t.Errorf("Expected extension param in URL, got %q", resp.URL)
	}
}

func TestRedirectHandler(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/v1/img?src=cat.jpg&width=800&height=600&ow=200", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", rec.Code)
	}

	location := rec.Header().Get("Location")
	expected := "https://img.example.com/cat.jpg?width=200&height=150"
	if location != expected {
		t.Errorf("Expected Location %q, got %q", expected, location)
	}
}

func TestRenderHandler(t *testing.T) {
	router := newTestRouter()

	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 0, 255})
		}
	}
	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}

	req := httptest.NewRequest("POST", "/v1/render?width=400&height=300&ow=100&format=png", &body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}

	out, err := render.DecodeBytes(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("Failed to decode rendered image: %v", err)
	}
	bounds := out.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 75 {
		t.Errorf("Expected 100x75, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderHandlerBadImage(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("POST", "/v1/render?width=100", bytes.NewReader([]byte("not an image")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}
