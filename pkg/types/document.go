// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionStatus indicates the state of PDF-to-Markdown conversion for a
// single meeting document.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionSkipped ConversionStatus = "skipped"
	ConversionFailed  ConversionStatus = "failed"
)

// ConversionResult is produced once per document by a converter.
//
// When Succeeded is false, Markdown and Text are empty and Err holds the
// reason the document could not be opened. OCRUsed is true exactly when
// OCRPages is non-empty.
type ConversionResult struct {
	// Markdown is the concatenated per-page Markdown, each page followed by
	// a horizontal-rule separator.
	Markdown string `json:"-" yaml:"-"`

	// Text is the plain text of every page in order, joined with newlines.
	// Scanned pages contribute their OCR text.
	Text string `json:"-" yaml:"-"`

	// OCRUsed reports whether at least one page went through OCR.
	OCRUsed bool `json:"ocr_used" yaml:"ocr_used"`

	// Succeeded is false only when the document could not be opened at all.
	Succeeded bool `json:"succeeded" yaml:"succeeded"`

	// Pages is the number of pages processed.
	Pages int `json:"pages" yaml:"pages"`

	// OCRPages lists the 0-based indexes of scanned pages.
	OCRPages []int `json:"ocr_pages,omitempty" yaml:"ocr_pages,omitempty"`

	// Anomalies lists the 0-based indexes of pages whose content could not
	// be processed and were emitted as empty blocks.
	Anomalies []int `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`

	// Err is the failure cause when Succeeded is false.
	Err error `json:"-" yaml:"-"`
}
