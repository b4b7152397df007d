// Package imageurl composes transformation-aware URLs for CDN-backed image
// services.
//
// Given the image attributes a caller declares, optional size overrides from
// a responsive rendering host, and service-side transformation options, the
// composer reconciles the target dimensions (preserving aspect ratio) and
// delegates URL construction to a pluggable builder.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		imageurl "github.com/menta2k/image-url"
//		"github.com/menta2k/image-url/pkg/builder"
//		"github.com/menta2k/image-url/pkg/transform"
//	)
//
//	func main() {
//		composer := imageurl.New(builder.Config{BaseURL: "https://img.example.com"})
//
//		// The host wants this 800x600 image rendered at 400px wide.
//		url, err := composer.URL(
//			transform.Size{Width: transform.Px(400)},
//			transform.Attrs{Src: "photos/cat.jpg", Width: transform.Px(800), Height: transform.Px(600)},
//			transform.Options{Format: "webp", Quality: 80},
//		)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// https://img.example.com/photos/cat.jpg?width=400&height=300&format=webp&quality=80
//		fmt.Println(url)
//	}
//
// The package consists of four main components:
//
// 1. Transform (pkg/transform): option types and dimension coercion
// 2. Compose (pkg/compose): the pure merge/reconcile resolution step
// 3. Builder (pkg/builder): query-parameter and path-segment URL grammars
// 4. Render (pkg/render): a local provider that applies transformations to pixels
//
// An optional vision-model detector (pkg/focal) can supply gravity
// coordinates so service-side crops keep the subject in frame.
package imageurl

import (
	"context"
	"errors"
	"image"

	"github.com/menta2k/image-url/pkg/builder"
	"github.com/menta2k/image-url/pkg/compose"
	"github.com/menta2k/image-url/pkg/focal"
	"github.com/menta2k/image-url/pkg/transform"
)

// Version of the image-url library
const Version = "1.0.0"

// ErrNoDetector is returned by FocusedURL when no focal detector is configured.
var ErrNoDetector = errors.New("no focal detector configured")

// Composer binds a URL builder and service configuration into a reusable
// URL composition front end.
type Composer struct {
	builder  builder.Builder
	config   builder.Config
	detector *focal.Detector
}

// New creates a Composer using the query-parameter URL grammar.
func New(serviceConfig builder.Config) *Composer {
	return NewWithBuilder(builder.NewQueryBuilder(), serviceConfig)
}

// NewWithBuilder creates a Composer with a custom URL builder.
func NewWithBuilder(b builder.Builder, serviceConfig builder.Config) *Composer {
	return &Composer{
		builder: b,
		config:  serviceConfig,
	}
}

// SetDetector attaches a focal point detector used by FocusedURL.
func (c *Composer) SetDetector(d *focal.Detector) {
	c.detector = d
}

// URL resolves the request against the size override and returns the built
// URL. Malformed numeric inputs are not rejected; they propagate into the
// URL as the NaN sentinel for the service to reject.
func (c *Composer) URL(size transform.Size, attrs transform.Attrs, opts transform.Options) (string, error) {
	return compose.Compose(size, attrs, opts, c.config, c.builder)
}

// Resolve returns the reconciled option set and final service config without
// building a URL.
func (c *Composer) Resolve(size transform.Size, attrs transform.Attrs, opts transform.Options) compose.Resolved {
	return compose.Resolve(size, attrs, opts, c.config)
}

// FocusedURL detects the image's focal point and composes a URL whose
// gravity keeps the subject in frame. An already-set gravity is respected.
func (c *Composer) FocusedURL(ctx context.Context, img image.Image, size transform.Size, attrs transform.Attrs, opts transform.Options) (string, error) {
	if c.detector == nil {
		return "", ErrNoDetector
	}
	if opts.Gravity == "" {
		point, err := c.detector.FocalPoint(ctx, img)
		if err != nil {
			return "", err
		}
		opts.Gravity = point.Gravity()
	}
	return c.URL(size, attrs, opts)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
