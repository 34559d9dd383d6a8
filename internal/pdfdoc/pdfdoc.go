// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc exposes the pages of a PDF and their embedded text layer.
// It never decodes images; scanned pages are left to the ocr package.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrDocumentUnreadable marks a file that cannot be opened or parsed as a PDF.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrMalformedPage marks a page whose content stream could not be interpreted.
	ErrMalformedPage = errors.New("malformed page content")
)

// Document is an opened PDF. It is immutable once parsed and is meant to be
// used by a single goroutine.
type Document struct {
	id     string
	data   []byte
	reader *pdf.Reader
	fonts  map[string]*pdf.Font
}

// Open reads and parses the PDF at path. The path becomes the document ID.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrDocumentUnreadable, path, err)
	}
	return Parse(path, data)
}

// Parse parses PDF bytes. Any parser failure, including a panic inside the
// PDF library, is reported as ErrDocumentUnreadable.
func Parse(id string, data []byte) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrDocumentUnreadable, id)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: parsing %s: %v", ErrDocumentUnreadable, id, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrDocumentUnreadable, id, err)
	}
	if r.NumPage() == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", ErrDocumentUnreadable, id)
	}

	return &Document{
		id:     id,
		data:   data,
		reader: r,
		fonts:  make(map[string]*pdf.Font),
	}, nil
}

// ID returns the identifier the document was opened with.
func (d *Document) ID() string { return d.id }

// Bytes returns the raw PDF bytes, used to rasterize pages.
func (d *Document) Bytes() []byte { return d.data }

// NumPages returns the number of pages.
func (d *Document) NumPages() int { return d.reader.NumPage() }

// Page returns the page at the 0-based index i.
func (d *Document) Page(i int) *Page {
	return &Page{doc: d, index: i}
}

// Page is one page of a Document.
type Page struct {
	doc   *Document
	index int
}

// Index returns the 0-based page index.
func (p *Page) Index() int { return p.index }

// Number returns the 1-based page number used by PDF tools.
func (p *Page) Number() int { return p.index + 1 }

// Text returns the embedded text of the page and an HTML rendering of it.
// Pages without a text layer return empty strings and a nil error. A non-nil
// error wraps ErrMalformedPage; both strings are then empty.
func (p *Page) Text() (plain, html string, err error) {
	err = safely(func() error {
		page := p.doc.reader.Page(p.Number())
		if page.V.IsNull() {
			return nil
		}

		for _, name := range page.Fonts() {
			if _, ok := p.doc.fonts[name]; !ok {
				f := page.Font(name)
				p.doc.fonts[name] = &f
			}
		}

		text, err := page.GetPlainText(p.doc.fonts)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return nil
		}

		plain = text
		html = renderHTML(textRows(page.Content().Text), countImages(page))
		return nil
	})
	if err != nil {
		return "", "", fmt.Errorf("page %d of %s: %w", p.Number(), p.doc.id, err)
	}
	return plain, html, nil
}

// safely runs fn and converts both errors and panics from the PDF library
// into ErrMalformedPage.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedPage, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	return nil
}

// countImages returns the number of image XObjects painted by the page's
// content streams. Resource dictionaries are often shared between pages, so
// the Do operators are counted rather than the resource entries.
func countImages(page pdf.Page) int {
	xobjects := page.Resources().Key("XObject")
	n := 0
	count := func(stk *pdf.Stack, op string) {
		if op != "Do" {
			for stk.Len() > 0 {
				stk.Pop()
			}
			return
		}
		if stk.Len() == 0 {
			return
		}
		name := stk.Pop().Name()
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			n++
		}
	}

	contents := page.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Array:
		for i := 0; i < contents.Len(); i++ {
			pdf.Interpret(contents.Index(i), count)
		}
	case pdf.Stream:
		pdf.Interpret(contents, count)
	}
	return n
}
