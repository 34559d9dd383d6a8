// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns meeting PDFs into Markdown, one page at a time,
// falling back to OCR for pages without a text layer.
package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/council-minutes/internal/markdown"
	"github.com/pdiddy/council-minutes/internal/ocrlog"
	"github.com/pdiddy/council-minutes/internal/pdfdoc"
	"github.com/pdiddy/council-minutes/pkg/types"
)

// Converter transforms one PDF into a ConversionResult. A result with
// Succeeded false carries the cause in Err and no Markdown.
type Converter interface {
	Convert(ctx context.Context, pdfPath string) types.ConversionResult
}

// PageOCR recognizes the text of a single 1-based page of a PDF.
type PageOCR interface {
	PageText(ctx context.Context, doc []byte, page int) (string, error)
}

// PageConverter is the text-layer converter with an OCR fallback.
type PageConverter struct {
	ocr      PageOCR
	md       *markdown.Normalizer
	recorder ocrlog.Recorder
	log      zerolog.Logger
}

// NewPageConverter returns a converter that sends scanned pages to ocr and
// notes each document that needed OCR in recorder. A nil recorder discards.
func NewPageConverter(ocr PageOCR, recorder ocrlog.Recorder, logger zerolog.Logger) *PageConverter {
	if recorder == nil {
		recorder = ocrlog.Discard
	}
	return &PageConverter{
		ocr:      ocr,
		md:       markdown.New(),
		recorder: recorder,
		log:      logger,
	}
}

// Convert opens pdfPath and converts every page in order. A page with any
// non-whitespace embedded text takes the text path; every other page goes
// to OCR. Failures on a single page yield the scan disclaimer with an empty
// body and never abort the document.
func (c *PageConverter) Convert(ctx context.Context, pdfPath string) types.ConversionResult {
	doc, err := pdfdoc.Open(pdfPath)
	if err != nil {
		return types.ConversionResult{Err: err}
	}

	res := types.ConversionResult{Pages: doc.NumPages()}
	var body, text strings.Builder
	logged := false

	for i := 0; i < doc.NumPages(); i++ {
		if err := ctx.Err(); err != nil {
			return types.ConversionResult{Err: fmt.Errorf("converting %s: %w", pdfPath, err)}
		}

		page := doc.Page(i)
		plain, html, err := page.Text()

		var fragment string
		switch {
		case err != nil:
			c.log.Warn().Err(err).Str("pdf", pdfPath).Int("page", page.Number()).Msg("malformed page content")
			res.Anomalies = append(res.Anomalies, i)
			fragment = markdown.ScannedPage("")

		case strings.TrimSpace(plain) != "":
			fragment, err = c.md.TextPage(html)
			if err != nil {
				c.log.Warn().Err(err).Str("pdf", pdfPath).Int("page", page.Number()).Msg("page HTML not convertible")
				res.Anomalies = append(res.Anomalies, i)
				fragment = markdown.ScannedPage("")
			}
			text.WriteString(plain)
			text.WriteString("\n")

		default:
			if !logged {
				if err := c.recorder.Record(ocrlog.KindOCR, pdfPath); err != nil {
					c.log.Warn().Err(err).Str("pdf", pdfPath).Msg("recording OCR usage")
				}
				logged = true
			}
			res.OCRPages = append(res.OCRPages, i)

			ocrText, err := c.ocr.PageText(ctx, doc.Bytes(), page.Number())
			if err != nil {
				c.log.Warn().Err(err).Str("pdf", pdfPath).Int("page", page.Number()).Msg("OCR failed")
				res.Anomalies = append(res.Anomalies, i)
				ocrText = ""
			}
			fragment = markdown.ScannedPage(ocrText)
			text.WriteString(ocrText)
			text.WriteString("\n")
		}

		body.WriteString(fragment)
		body.WriteString(markdown.Separator)
	}

	res.Markdown = markdown.Clean(body.String())
	res.Text = text.String()
	res.OCRUsed = len(res.OCRPages) > 0
	res.Succeeded = true

	c.log.Debug().
		Str("pdf", pdfPath).
		Int("pages", res.Pages).
		Ints("ocr_pages", res.OCRPages).
		Msg("converted")
	return res
}
