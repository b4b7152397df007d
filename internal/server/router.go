// Package server exposes URL composition and local rendering over HTTP.
package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	imageurl "github.com/menta2k/image-url"
	"github.com/menta2k/image-url/pkg/render"
	"github.com/menta2k/image-url/pkg/transform"
)

// Router routes composition and render requests.
type Router struct {
	router   *mux.Router
	composer *imageurl.Composer
	renderer *render.Renderer
}

// New creates a Router serving the v1 API.
func New(composer *imageurl.Composer, renderer *render.Renderer) *Router {
	r := mux.NewRouter()
	router := &Router{
		router:   r,
		composer: composer,
		renderer: renderer,
	}

	r.HandleFunc("/v1/url", router.urlHandler).Methods("GET")
	r.HandleFunc("/v1/img", router.redirectHandler).Methods("GET")
	r.HandleFunc("/v1/render", router.renderHandler).Methods("POST")

	return router
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.router.ServeHTTP(w, r)
}

// parseRequest maps query parameters onto the composition inputs. width and
// height are the caller-declared attributes, ow and oh the host override.
// Unknown transformation keys arrive prefixed with "t_".
func parseRequest(r *http.Request) (transform.Size, transform.Attrs, transform.Options) {
	q := r.URL.Query()

	attrs := transform.Attrs{
		Src:    q.Get("src"),
		Width:  transform.CoerceDimension(q.Get("width")),
		Height: transform.CoerceDimension(q.Get("height")),
	}

	size := transform.Size{
		Width:  transform.CoerceDimension(q.Get("ow")),
		Height: transform.CoerceDimension(q.Get("oh")),
	}

	opts := transform.Options{
		Format:  q.Get("format"),
		Crop:    q.Get("crop"),
		Gravity: q.Get("gravity"),
	}
	if quality := q.Get("quality"); quality != "" {
		opts.Quality, _ = strconv.Atoi(quality)
	}
	for key, values := range q {
		if strings.HasPrefix(key, "t_") && len(values) > 0 {
			if opts.Extra == nil {
				opts.Extra = make(map[string]string)
			}
			opts.Extra[strings.TrimPrefix(key, "t_")] = values[0]
		}
	}

	return size, attrs, opts
}
