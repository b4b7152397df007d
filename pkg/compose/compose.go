// Package compose reconciles declared image attributes, host size overrides,
// and transformation options into one resolved request, then delegates URL
// construction to a builder.
//
// Resolution is a pure function: no I/O, no shared state, identical inputs
// give identical outputs. Data-quality problems (non-numeric dimension
// strings, zero original dimensions) are never rejected here; they propagate
// as the NaN sentinel for the service to reject.
package compose

import (
	"math"

	"github.com/menta2k/image-url/pkg/builder"
	"github.com/menta2k/image-url/pkg/transform"
)

// Resolved is the outcome of one resolution: the working option set handed to
// the builder, and the final service config carrying the transformations.
type Resolved struct {
	Options transform.Options
	Config  builder.Config
}

// Resolve merges attrs with opts (opts win on collision) and reconciles the
// merged width/height against the host-supplied size override.
//
// Width: an override width replaces a differing declared width, and a present
// height is rescaled by the same ratio, rounded down. Without a declared
// width (fill layout) the override width is adopted directly, no scaling.
//
// Height: when an override height is present, the height is rederived from
// the working aspect ratio. Original width falls back through the override
// width to zero, so a zero override width degenerates to the NaN sentinel
// rather than a panic.
func Resolve(size transform.Size, attrs transform.Attrs, opts transform.Options, cfg builder.Config) Resolved {
	working := transform.Merge(attrs, opts)
	w := working.Width
	h := working.Height

	if size.Width.IsSet() {
		switch {
		case w.IsSet() && size.Width.Value() != w.Value():
			if h.IsSet() {
				h = transform.Px(math.Floor(h.Value() * (size.Width.Value() / w.Value())))
			}
			w = size.Width
		case !w.IsSet():
			w = size.Width
		}
	}

	if size.Height.IsSet() {
		h = transform.Px(scaledHeight(
			firstSet(w, size.Width),
			valueOrZero(h),
			firstSet(size.Width, w),
		))
	}

	working.Width = w
	working.Height = h

	final := opts
	final.Width = w
	final.Height = h
	cfg.Transformations = final

	return Resolved{Options: working, Config: cfg}
}

// Compose resolves the request and delegates to the builder, returning its
// result unmodified.
func Compose(size transform.Size, attrs transform.Attrs, opts transform.Options, cfg builder.Config, b builder.Builder) (string, error) {
	r := Resolve(size, attrs, opts, cfg)
	return b.BuildURL(r.Options, r.Config)
}

// scaledHeight derives a height preserving originalHeight/originalWidth at
// newWidth, rounded down. IEEE semantics carry a zero original width through
// as Inf or NaN instead of panicking.
func scaledHeight(originalWidth, originalHeight, newWidth float64) float64 {
	return math.Floor(originalHeight / originalWidth * newWidth)
}

func firstSet(a, b transform.Dimension) float64 {
	if a.IsSet() {
		return a.Value()
	}
	if b.IsSet() {
		return b.Value()
	}
	return 0
}

func valueOrZero(d transform.Dimension) float64 {
	if d.IsSet() {
		return d.Value()
	}
	return 0
}
