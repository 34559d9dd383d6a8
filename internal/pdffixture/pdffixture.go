// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdffixture builds small PDFs for tests: pages with a text layer
// and image-only pages that stand in for scanned paper.
package pdffixture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Page describes one fixture page. A page with no Lines and Scanned set
// carries only an image, so it has no text layer.
type Page struct {
	// Heading lines are set in 18pt bold, Bold lines in 14pt bold and
	// Lines in 11pt regular, in that order from the top.
	Heading []string
	Bold    []string
	Lines   []string
	Scanned bool
}

// Text returns a page with one line per element.
func Text(lines ...string) Page { return Page{Lines: lines} }

// Scanned returns an image-only page.
func Scanned() Page { return Page{Scanned: true} }

// Build renders pages into PDF bytes.
func Build(t testing.TB, pages ...Page) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)

	for i, p := range pages {
		doc.AddPage()
		y := 20.0
		if len(p.Heading) > 0 {
			doc.SetFont("Helvetica", "B", 18)
			for _, line := range p.Heading {
				doc.Text(20, y, line)
				y += 10
			}
		}
		if len(p.Bold) > 0 {
			doc.SetFont("Helvetica", "B", 14)
			for _, line := range p.Bold {
				doc.Text(20, y, line)
				y += 8
			}
		}
		doc.SetFont("Helvetica", "", 11)
		for _, line := range p.Lines {
			doc.Text(20, y, line)
			y += 6
		}
		if p.Scanned {
			name := fmt.Sprintf("scan-%d", i)
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(scanImage(t)))
			doc.ImageOptions(name, 20, 20, 150, 100, false, opts, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("rendering fixture PDF: %v", err)
	}
	return buf.Bytes()
}

// Write renders pages and writes them to dir/name, returning the path.
func Write(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, Build(t, pages...), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// scanImage returns a small grey PNG with a dark bar, enough to look like
// a scanned line of text.
func scanImage(t testing.TB) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 60, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			c := color.Gray{Y: 230}
			if y >= 18 && y < 22 && x >= 5 && x < 55 {
				c = color.Gray{Y: 20}
			}
			img.SetGray(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture image: %v", err)
	}
	return buf.Bytes()
}
