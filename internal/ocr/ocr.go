// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr recognizes text on pages that carry no embedded text layer.
// A page is rendered at its native resolution, upscaled three times with
// high-quality resampling, and passed to tesseract.
package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/council-minutes/internal/container"
	"github.com/pdiddy/council-minutes/pkg/types"
)

const (
	// DefaultDPI is the native PDF resolution (one pixel per point).
	DefaultDPI = 72

	// UpscaleFactor is the linear upscale applied before recognition.
	// Scanned minutes rendered at native resolution recognize poorly.
	UpscaleFactor = 3

	// DefaultLanguage is the tesseract language pack.
	DefaultLanguage = "eng"

	// DefaultImage is the container image used by the container backend.
	DefaultImage = "council-minutes-ocr:latest"
)

// Engine renders and recognizes single pages.
type Engine struct {
	raster     Rasterizer
	recognizer Recognizer
	dpi        int
	timeout    time.Duration
}

// Options tunes an Engine. Zero values select the defaults.
type Options struct {
	DPI         int
	PageTimeout time.Duration
}

// NewEngine builds an Engine from explicit collaborators.
func NewEngine(r Rasterizer, rec Recognizer, opts Options) *Engine {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	return &Engine{
		raster:     r,
		recognizer: rec,
		dpi:        opts.DPI,
		timeout:    opts.PageTimeout,
	}
}

// New builds an Engine backed by pdftoppm and tesseract, run locally or in a
// container according to cfg.Backend.
func New(cfg types.OCRConfig) (*Engine, error) {
	var runner Runner
	switch cfg.Backend {
	case "", types.OCRLocal:
		runner = LocalRunner{}
	case types.OCRContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		image := cfg.Image
		if image == "" {
			image = DefaultImage
		}
		cr, err := NewContainerRunner(rt, image)
		if err != nil {
			return nil, err
		}
		runner = cr
	default:
		return nil, fmt.Errorf("unknown OCR backend %q: use %q or %q", cfg.Backend, types.OCRLocal, types.OCRContainer)
	}

	lang := cfg.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	return NewEngine(
		Poppler{Runner: runner},
		Tesseract{Runner: runner, Language: lang},
		Options{DPI: cfg.DPI, PageTimeout: cfg.PageTimeout},
	), nil
}

// PageText returns the recognized text of the 1-based page of doc. Low
// confidence output is returned as is; only tool failures are errors.
func (e *Engine) PageText(ctx context.Context, doc []byte, page int) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	img, err := e.raster.Render(ctx, doc, page, e.dpi)
	if err != nil {
		return "", err
	}
	text, err := e.recognizer.Recognize(ctx, Upscale(img))
	if err != nil {
		return "", fmt.Errorf("recognizing page %d: %w", page, err)
	}
	return text, nil
}
