// Package builder turns a resolved option set and service configuration into
// a final addressable image URL. Two grammars are provided: query parameters
// and comma-joined path segments.
package builder

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/menta2k/image-url/pkg/transform"
)

var (
	ErrBaseURLRequired = errors.New("service base url is required")
	ErrSourceRequired  = errors.New("image source is required")
)

// Config addresses the image service. Everything the well-known fields don't
// cover rides along in Extra and is passed through untouched. Transformations
// is attached by the composer before the builder is invoked.
type Config struct {
	BaseURL         string            `json:"base_url"`
	Extra           map[string]string `json:"extra,omitempty"`
	Transformations transform.Options `json:"transformations"`
}

// Builder builds one absolute URL from a resolved option set and config.
type Builder interface {
	BuildURL(opts transform.Options, cfg Config) (string, error)
}

// QueryBuilder encodes transformations as query parameters:
//
//	https://img.example.com/photos/cat.jpg?width=400&height=300&format=webp
type QueryBuilder struct{}

// NewQueryBuilder creates a query-parameter URL builder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// BuildURL joins the source onto the base path and appends the option set as
// query parameters in stable order.
func (b *QueryBuilder) BuildURL(opts transform.Options, cfg Config) (string, error) {
	u, err := parseBase(cfg, opts)
	if err != nil {
		return "", err
	}
	u.Path = path.Join(u.Path, opts.Src)

	var query []string
	for _, p := range paramsOf(opts) {
		query = append(query, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	u.RawQuery = strings.Join(query, "&")
	return u.String(), nil
}

// PathBuilder encodes transformations as one comma-joined path segment
// between the base path and the source:
//
//	https://img.example.com/w_400,h_300,f_webp/photos/cat.jpg
type PathBuilder struct{}

// NewPathBuilder creates a path-segment URL builder.
func NewPathBuilder() *PathBuilder {
	return &PathBuilder{}
}

var pathKeys = map[string]string{
	"width":   "w",
	"height":  "h",
	"format":  "f",
	"quality": "q",
	"crop":    "c",
	"gravity": "g",
}

// BuildURL inserts the transformation segment ahead of the source path.
func (b *PathBuilder) BuildURL(opts transform.Options, cfg Config) (string, error) {
	u, err := parseBase(cfg, opts)
	if err != nil {
		return "", err
	}

	var directives []string
	for _, p := range paramsOf(opts) {
		key := p.Key
		if short, ok := pathKeys[key]; ok {
			key = short
		}
		directives = append(directives, fmt.Sprintf("%s_%s", key, p.Value))
	}

	segments := make([]string, 0, 2)
	if len(directives) > 0 {
		segments = append(segments, strings.Join(directives, ","))
	}
	segments = append(segments, opts.Src)
	u.Path = path.Join(u.Path, path.Join(segments...))
	return u.String(), nil
}

func parseBase(cfg Config, opts transform.Options) (*url.URL, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, ErrBaseURLRequired
	}
	if strings.TrimSpace(opts.Src) == "" {
		return nil, ErrSourceRequired
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	return u, nil
}

// paramsOf strips the source from the option set; it travels in the path.
func paramsOf(opts transform.Options) []transform.Param {
	opts.Src = ""
	return opts.Params()
}
