package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/menta2k/image-url/pkg/render"
	"github.com/menta2k/image-url/pkg/transform"
)

// maxRenderBody caps uploads to the render endpoint.
const maxRenderBody = 32 << 20

type urlResponse struct {
	RequestID string              `json:"request_id"`
	URL       string              `json:"url"`
	Width     transform.Dimension `json:"width,omitempty"`
	Height    transform.Dimension `json:"height,omitempty"`
}

func (router *Router) urlHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	size, attrs, opts := parseRequest(r)

	resolved := router.composer.Resolve(size, attrs, opts)
	url, err := router.composer.URL(size, attrs, opts)
	if err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Str("src", attrs.Src).Msg("Failed to compose URL")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("request_id", requestID).Str("src", attrs.Src).Str("url", url).Msg("Composed URL")

	respondWithJSON(w, urlResponse{
		RequestID: requestID,
		URL:       url,
		Width:     resolved.Options.Width,
		Height:    resolved.Options.Height,
	})
}

func (router *Router) redirectHandler(w http.ResponseWriter, r *http.Request) {
	size, attrs, opts := parseRequest(r)

	url, err := router.composer.URL(size, attrs, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

func (router *Router) renderHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRenderBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, err := render.DecodeBytes(body)
	if err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("Failed to decode image")
		http.Error(w, "Failed to decode image", http.StatusBadRequest)
		return
	}

	size, attrs, opts := parseRequest(r)
	resolved := router.composer.Resolve(size, attrs, opts)

	var buf bytes.Buffer
	if err := router.renderer.Render(&buf, img, resolved.Options); err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("Failed to render image")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	log.Info().Str("request_id", requestID).Int("bytes", buf.Len()).Msg("Rendered image")

	w.Header().Set("Content-Type", contentTypeFor(resolved.Options.Format))
	w.Write(buf.Bytes())
}

func respondWithJSON(w http.ResponseWriter, data interface{}) {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonBody)
}

func contentTypeFor(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
