// Package transform defines the option types fed into image URL composition:
// caller-declared display attributes, host size overrides, and service-side
// transformation directives.
package transform

import (
	"sort"
	"strconv"
)

// Attrs are the caller's declared image attributes prior to any override.
// Width and height may arrive as numbers or numeric strings; anything the
// well-known fields don't cover rides along in Extra untouched.
type Attrs struct {
	Src    string            `json:"src,omitempty"`
	Width  Dimension         `json:"width,omitempty"`
	Height Dimension         `json:"height,omitempty"`
	Extra  map[string]string `json:"extra,omitempty"`
}

// Size is a host-supplied target size that takes precedence over the
// declared attributes under the reconciliation rules.
type Size struct {
	Width  Dimension `json:"width,omitempty"`
	Height Dimension `json:"height,omitempty"`
}

// Options are service-side transformation directives. Well-known directives
// get typed fields; arbitrary service extensions go in the Extra bag.
type Options struct {
	Src     string            `json:"src,omitempty"`
	Width   Dimension         `json:"width,omitempty"`
	Height  Dimension         `json:"height,omitempty"`
	Format  string            `json:"format,omitempty"`
	Quality int               `json:"quality,omitempty"`
	Crop    string            `json:"crop,omitempty"`
	Gravity string            `json:"gravity,omitempty"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// Merge combines display attributes with transformation options into one
// working option set. Transformation values win on collision.
func Merge(attrs Attrs, opts Options) Options {
	merged := opts
	if merged.Src == "" {
		merged.Src = attrs.Src
	}
	if !merged.Width.IsSet() {
		merged.Width = attrs.Width
	}
	if !merged.Height.IsSet() {
		merged.Height = attrs.Height
	}
	if len(attrs.Extra) > 0 {
		extra := make(map[string]string, len(attrs.Extra)+len(merged.Extra))
		for k, v := range attrs.Extra {
			extra[k] = v
		}
		for k, v := range opts.Extra {
			extra[k] = v
		}
		merged.Extra = extra
	}
	return merged
}

// Param is one transformation key/value pair.
type Param struct {
	Key   string
	Value string
}

// Params returns the set options as ordered key/value pairs: width, height,
// format, quality, crop, gravity, then extension keys sorted by name.
func (o Options) Params() []Param {
	var params []Param
	if o.Width.IsSet() {
		params = append(params, Param{"width", o.Width.String()})
	}
	if o.Height.IsSet() {
		params = append(params, Param{"height", o.Height.String()})
	}
	if o.Format != "" {
		params = append(params, Param{"format", o.Format})
	}
	if o.Quality != 0 {
		params = append(params, Param{"quality", strconv.Itoa(o.Quality)})
	}
	if o.Crop != "" {
		params = append(params, Param{"crop", o.Crop})
	}
	if o.Gravity != "" {
		params = append(params, Param{"gravity", o.Gravity})
	}
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params = append(params, Param{k, o.Extra[k]})
	}
	return params
}
