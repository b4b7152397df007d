// Package render applies a resolved transformation set to actual pixels. It
// is the offline stand-in for the remote image service, used by the CLI's
// local mode, the server's render endpoint, and tests.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-url/pkg/transform"
)

// Renderer applies transformation options to images.
type Renderer struct {
	quality int
}

// New creates a Renderer with default encode quality.
func New() *Renderer {
	return &Renderer{quality: 85}
}

// NewWithQuality creates a Renderer with a custom default encode quality.
func NewWithQuality(quality int) *Renderer {
	return &Renderer{quality: quality}
}

// Apply resizes or crops the image according to the option set. Unlike URL
// composition, the local provider rejects non-finite dimensions: this is the
// point where the sentinel surfaces as an error.
func (r *Renderer) Apply(img image.Image, opts transform.Options) (image.Image, error) {
	if (opts.Width.IsSet() && !opts.Width.Valid()) || (opts.Height.IsSet() && !opts.Height.Valid()) {
		return nil, fmt.Errorf("non-finite dimensions: width=%s height=%s", opts.Width, opts.Height)
	}

	w, h := opts.Width.Int(), opts.Height.Int()
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("negative dimensions: %dx%d", w, h)
	}
	if w == 0 && h == 0 {
		return img, nil
	}

	switch opts.Crop {
	case "fill":
		if w == 0 || h == 0 {
			return nil, fmt.Errorf("fill crop requires both dimensions, got %dx%d", w, h)
		}
		return imaging.Fill(img, w, h, anchorFor(opts.Gravity), imaging.Lanczos), nil
	case "fit":
		if w == 0 || h == 0 {
			return nil, fmt.Errorf("fit crop requires both dimensions, got %dx%d", w, h)
		}
		return imaging.Fit(img, w, h, imaging.Lanczos), nil
	case "crop":
		if w == 0 || h == 0 {
			return nil, fmt.Errorf("crop requires both dimensions, got %dx%d", w, h)
		}
		return imaging.CropAnchor(img, w, h, anchorFor(opts.Gravity)), nil
	case "", "scale":
		// Zero on one axis preserves aspect ratio.
		return imaging.Resize(img, w, h, imaging.Lanczos), nil
	default:
		return nil, fmt.Errorf("unsupported crop mode: %s", opts.Crop)
	}
}

// Encode writes the image in the requested format. An empty format means JPEG.
func (r *Renderer) Encode(w io.Writer, img image.Image, format string, quality int) error {
	if quality <= 0 {
		quality = r.quality
	}
	switch strings.ToLower(format) {
	case "", "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(w, img)
	case "webp":
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Render applies the option set and encodes the result in one step, using
// the option set's format and quality.
func (r *Renderer) Render(w io.Writer, img image.Image, opts transform.Options) error {
	out, err := r.Apply(img, opts)
	if err != nil {
		return err
	}
	return r.Encode(w, out, opts.Format, opts.Quality)
}

// DecodeBytes decodes an image from raw bytes with WebP support.
func DecodeBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// anchorFor maps a gravity directive to a crop anchor. Compass names map
// directly; "x,y" focal coordinates in [0,1] snap to the nearest anchor.
// Anything else centers.
func anchorFor(gravity string) imaging.Anchor {
	switch gravity {
	case "north":
		return imaging.Top
	case "south":
		return imaging.Bottom
	case "east":
		return imaging.Right
	case "west":
		return imaging.Left
	case "north_east":
		return imaging.TopRight
	case "north_west":
		return imaging.TopLeft
	case "south_east":
		return imaging.BottomRight
	case "south_west":
		return imaging.BottomLeft
	}

	if x, y, ok := parseFocalGravity(gravity); ok {
		cols := [3]string{"west", "", "east"}
		rows := [3]string{"north", "", "south"}
		col := cols[third(x)]
		row := rows[third(y)]
		switch {
		case row == "" && col == "":
			return imaging.Center
		case row == "":
			return anchorFor(col)
		case col == "":
			return anchorFor(row)
		default:
			return anchorFor(row + "_" + col)
		}
	}

	return imaging.Center
}

func parseFocalGravity(gravity string) (x, y float64, ok bool) {
	parts := strings.Split(gravity, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

func third(v float64) int {
	switch {
	case v < 1.0/3:
		return 0
	case v > 2.0/3:
		return 2
	default:
		return 1
	}
}
