// Package focal detects the focal point of an image with a vision model and
// converts it into a gravity directive for crop transformations. The remote
// service then keeps the subject in frame when it crops.
package focal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const defaultPrompt = `Locate the single most important subject in this image.
Respond with JSON only, no prose: {"x": <0..1>, "y": <0..1>} where x and y are
the normalized center of the subject.`

// Point is a normalized focal point with coordinates in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Center is the fallback focal point when detection is unavailable.
var Center = Point{X: 0.5, Y: 0.5}

// Gravity formats the point as an "x,y" gravity directive.
func (p Point) Gravity() string {
	return fmt.Sprintf("%.3f,%.3f", clamp01(p.X), clamp01(p.Y))
}

// Detector asks an Ollama vision model for focal points.
type Detector struct {
	client *api.Client
	model  string
}

// NewDetector creates a Detector talking to the given Ollama URL.
func NewDetector(ollamaURL, model string) (*Detector, error) {
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	return &Detector{
		client: api.NewClient(baseURL, http.DefaultClient),
		model:  model,
	}, nil
}

// FocalPoint returns the detected focal point of the image. Any model
// failure after a successful request degrades to Center rather than erroring;
// cropping around the center is always a usable answer.
func (d *Detector) FocalPoint(ctx context.Context, img image.Image) (Point, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return Center, fmt.Errorf("failed to encode image: %w", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: d.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: defaultPrompt,
				Images:  []api.ImageData{api.ImageData(buf.Bytes())},
			},
		},
		Stream: &streamFalse,
	}

	var responseContent string
	err := d.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return Center, fmt.Errorf("ollama chat error: %v", err)
	}

	return ParsePoint(responseContent), nil
}

// ParsePoint extracts a focal point from a model response. Code fences and
// surrounding prose are tolerated; anything unparseable falls back to Center.
func ParsePoint(raw string) Point {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Center
	}

	var p Point
	if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err != nil {
		return Center
	}
	p.X = clamp01(p.X)
	p.Y = clamp01(p.Y)
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
