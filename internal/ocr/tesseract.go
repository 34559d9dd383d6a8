// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
)

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Tesseract recognizes text with the tesseract CLI, reading a PNG from
// stdin and writing plain text to stdout.
type Tesseract struct {
	Runner   Runner
	Language string
}

// Recognize implements Recognizer.
func (t Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return "", fmt.Errorf("encoding page image: %w", err)
	}

	args := []string{"stdin", "stdout"}
	if t.Language != "" {
		args = append(args, "-l", t.Language)
	}

	var out bytes.Buffer
	if err := t.Runner.Run(ctx, "tesseract", args, &in, &out); err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return out.String(), nil
}
