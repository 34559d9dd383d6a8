// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown turns one page of a document into a Markdown fragment.
// Text-bearing pages arrive as HTML; scanned pages arrive as raw OCR text
// and are prefixed with a disclaimer.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// ImagePlaceholder replaces every embedded image.
	ImagePlaceholder = "(Image omitted)"

	// ScanDisclaimer prefixes every OCR'd page.
	ScanDisclaimer = "*<small>Scanned page, text may contain errors. See original file for clarity</small>*"

	// Separator follows every page.
	Separator = "\n---\n"

	emptyEmphasis = "****"
)

// Normalizer converts page content to Markdown. It is safe for concurrent use.
type Normalizer struct {
	mu   sync.Mutex
	conv *md.Converter
}

// New returns a Normalizer with ATX headings and GitHub-flavored tables.
func New() *Normalizer {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:    "atx",
		EmDelimiter:     "*",
		StrongDelimiter: "**",
	})
	conv.Use(plugin.GitHubFlavored())
	return &Normalizer{conv: conv}
}

// TextPage converts the HTML rendering of a text-bearing page. Images are
// replaced with ImagePlaceholder before conversion.
func (n *Normalizer) TextPage(pageHTML string) (string, error) {
	body, err := replaceImages(pageHTML)
	if err != nil {
		return "", err
	}

	n.mu.Lock()
	out, err := n.conv.ConvertString(body)
	n.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("converting HTML to Markdown: %w", err)
	}
	return out, nil
}

// ScannedPage wraps raw OCR output with the scan disclaimer.
func ScannedPage(ocrText string) string {
	return ScanDisclaimer + "  \n\n" + ocrText + "\n"
}

// Clean removes runs of empty emphasis markers left by empty bold/italic
// pairs. It repeats until none remain, since a removal can join two
// shorter runs into a new one.
func Clean(s string) string {
	for strings.Contains(s, emptyEmphasis) {
		s = strings.ReplaceAll(s, emptyEmphasis, "")
	}
	return s
}

// replaceImages parses pageHTML, swaps each <img> element for a text node,
// and renders the body contents back to HTML.
func replaceImages(pageHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("parsing page HTML: %w", err)
	}

	var imgs []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			imgs = append(imgs, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, img := range imgs {
		img.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: ImagePlaceholder}, img)
		img.Parent.RemoveChild(img)
	}

	body := findBody(doc)
	if body == nil {
		return "", nil
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("rendering page HTML: %w", err)
		}
	}
	return buf.String(), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
