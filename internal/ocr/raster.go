// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"

	"golang.org/x/image/draw"
)

// Rasterizer renders one PDF page to an image.
type Rasterizer interface {
	// Render draws the 1-based page of the PDF in doc at dpi.
	Render(ctx context.Context, doc []byte, page, dpi int) (image.Image, error)
}

// Poppler renders pages with pdftoppm. The PDF is piped on stdin and a
// single PNG is read from stdout.
type Poppler struct {
	Runner Runner
}

// Render implements Rasterizer.
func (p Poppler) Render(ctx context.Context, doc []byte, page, dpi int) (image.Image, error) {
	n := strconv.Itoa(page)
	args := []string{
		"-f", n, "-l", n,
		"-r", strconv.Itoa(dpi),
		"-png", "-singlefile",
		"fd://0",
	}

	var out bytes.Buffer
	if err := p.Runner.Run(ctx, "pdftoppm", args, bytes.NewReader(doc), &out); err != nil {
		return nil, fmt.Errorf("rasterizing page %d: %w", page, err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decoding page %d raster: %w", page, err)
	}
	return img, nil
}

// Upscale resizes img by UpscaleFactor using Catmull-Rom resampling.
func Upscale(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*UpscaleFactor, b.Dy()*UpscaleFactor))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
