package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	imageurl "github.com/menta2k/image-url"
	"github.com/menta2k/image-url/internal/config"
	"github.com/menta2k/image-url/internal/server"
	"github.com/menta2k/image-url/pkg/builder"
	"github.com/menta2k/image-url/pkg/focal"
	"github.com/menta2k/image-url/pkg/render"
	"github.com/menta2k/image-url/pkg/transform"
)

func main() {
	var cfgPath, base, builderKind string
	var src, width, height, ow, oh string
	var format, crop, gravity string
	var quality int
	var in, out string
	var useFocal bool
	var serve bool
	var listen string
	var showVersion bool

	flag.StringVar(&cfgPath, "config", "", "config file path (default: "+config.GetConfigPath()+")")
	flag.StringVar(&base, "base", "", "image service base URL (overrides config)")
	flag.StringVar(&builderKind, "builder", "", "URL grammar: query or path (overrides config)")
	flag.StringVar(&src, "src", "", "image source path on the service")
	flag.StringVar(&width, "width", "", "declared image width")
	flag.StringVar(&height, "height", "", "declared image height")
	flag.StringVar(&ow, "ow", "", "override width from the rendering host")
	flag.StringVar(&oh, "oh", "", "override height from the rendering host")
	flag.StringVar(&format, "format", "", "output format (jpg/png/webp)")
	flag.IntVar(&quality, "quality", 0, "output quality 1-100")
	flag.StringVar(&crop, "crop", "", "crop mode (scale/fill/fit/crop)")
	flag.StringVar(&gravity, "gravity", "", "crop gravity (compass name or x,y focal point)")
	flag.StringVar(&in, "in", "", "local input image for -out or -focal")
	flag.StringVar(&out, "out", "", "render locally to this file instead of composing a URL")
	flag.BoolVar(&useFocal, "focal", false, "detect gravity with the configured vision model")
	flag.BoolVar(&serve, "serve", false, "run the HTTP server")
	flag.StringVar(&listen, "listen", "", "listen address (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("image-url", imageurl.Version)
		return
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if base != "" {
		cfg.Service.BaseURL = base
	}
	if builderKind != "" {
		cfg.Service.Builder = builderKind
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	composer := newComposer(cfg)
	renderer := render.NewWithQuality(cfg.Render.DefaultQuality)

	if serve {
		router := server.New(composer, renderer)
		log.Info().Str("listen", cfg.Server.Listen).Msg("Server starting")
		log.Fatal().Err(http.ListenAndServe(cfg.Server.Listen, router)).Msg("Server stopped")
	}

	attrs := transform.Attrs{
		Src:    src,
		Width:  transform.CoerceDimension(width),
		Height: transform.CoerceDimension(height),
	}
	size := transform.Size{
		Width:  transform.CoerceDimension(ow),
		Height: transform.CoerceDimension(oh),
	}
	opts := transform.Options{
		Format:  format,
		Quality: quality,
		Crop:    crop,
		Gravity: gravity,
	}

	if useFocal && opts.Gravity == "" {
		point, err := detectFocal(cfg, in)
		if err != nil {
			log.Fatal().Err(err).Msg("Focal detection failed")
		}
		opts.Gravity = point.Gravity()
		log.Info().Str("gravity", opts.Gravity).Msg("Detected focal point")
	}

	if out != "" {
		if err := renderLocal(composer, renderer, in, out, size, attrs, opts); err != nil {
			log.Fatal().Err(err).Msg("Local render failed")
		}
		log.Info().Str("out", out).Msg("Rendered image")
		return
	}

	if src == "" {
		flag.Usage()
		os.Exit(2)
	}

	url, err := composer.URL(size, attrs, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compose URL")
	}
	fmt.Println(url)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetConfigPath()
		if _, err := os.Stat(path); err != nil {
			return config.Default(), nil
		}
	}
	return config.LoadFromFile(path)
}

func newComposer(cfg *config.Config) *imageurl.Composer {
	serviceConfig := builder.Config{
		BaseURL: cfg.Service.BaseURL,
		Extra:   cfg.Service.Extra,
	}

	var b builder.Builder
	switch cfg.Service.Builder {
	case "path":
		b = builder.NewPathBuilder()
	default:
		b = builder.NewQueryBuilder()
	}

	composer := imageurl.NewWithBuilder(b, serviceConfig)
	if cfg.Focal.Enabled {
		detector, err := focal.NewDetector(cfg.Focal.URL, cfg.Focal.Model)
		if err != nil {
			log.Warn().Err(err).Msg("Focal detector unavailable")
		} else {
			composer.SetDetector(detector)
		}
	}
	return composer
}

func detectFocal(cfg *config.Config, in string) (focal.Point, error) {
	if in == "" {
		return focal.Center, fmt.Errorf("-focal requires -in")
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return focal.Center, fmt.Errorf("failed to read input image: %w", err)
	}
	img, err := render.DecodeBytes(data)
	if err != nil {
		return focal.Center, fmt.Errorf("failed to decode input image: %w", err)
	}
	detector, err := focal.NewDetector(cfg.Focal.URL, cfg.Focal.Model)
	if err != nil {
		return focal.Center, err
	}
	return detector.FocalPoint(context.Background(), img)
}

func renderLocal(composer *imageurl.Composer, renderer *render.Renderer, in, out string, size transform.Size, attrs transform.Attrs, opts transform.Options) error {
	if in == "" {
		return fmt.Errorf("-out requires -in")
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read input image: %w", err)
	}
	img, err := render.DecodeBytes(data)
	if err != nil {
		return fmt.Errorf("failed to decode input image: %w", err)
	}

	resolved := composer.Resolve(size, attrs, opts)

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := renderer.Render(f, img, resolved.Options); err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	return nil
}
