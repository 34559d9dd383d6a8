// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// headingRatio is how much larger than the body text a row must be to be
// rendered as a heading.
const headingRatio = 1.4

type style struct {
	bold, italic bool
}

func fontStyle(font string) style {
	f := strings.ToLower(font)
	return style{
		bold:   strings.Contains(f, "bold") || strings.Contains(f, "black") || strings.Contains(f, "heavy"),
		italic: strings.Contains(f, "italic") || strings.Contains(f, "oblique"),
	}
}

// textRows groups positioned glyphs into rows by baseline, top of the page
// first. Glyphs keep their content-stream order within a row.
func textRows(texts []pdf.Text) pdf.Rows {
	byLine := make(map[int64]*pdf.Row)
	for _, t := range texts {
		y := int64(math.Round(t.Y))
		row, ok := byLine[y]
		if !ok {
			row = &pdf.Row{Position: y}
			byLine[y] = row
		}
		row.Content = append(row.Content, t)
	}

	rows := make(pdf.Rows, 0, len(byLine))
	for _, row := range byLine {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })
	return rows
}

// renderHTML lays out text rows as HTML paragraphs. Runs in bold or italic
// fonts are wrapped in <b>/<i>, oversized rows become <h2>, and each image
// on the page is emitted as an <img> marker after the text.
func renderHTML(rows pdf.Rows, images int) string {
	body := bodyFontSize(rows)

	var b strings.Builder
	b.WriteString("<div>\n")
	for _, row := range rows {
		line, size := renderRow(row.Content)
		if strings.TrimSpace(line) == "" {
			continue
		}
		tag := "p"
		if body > 0 && size >= body*headingRatio {
			tag = "h2"
		}
		b.WriteString("<" + tag + ">" + line + "</" + tag + ">\n")
	}
	for i := 0; i < images; i++ {
		b.WriteString("<p><img alt=\"\"></p>\n")
	}
	b.WriteString("</div>\n")
	return b.String()
}

// renderRow joins the glyphs of one row, inserting a space where the
// horizontal gap is wider than a fraction of the font size. Fonts without a
// width table report zero glyph widths; for those only a gap of more than
// one em counts as a word break. It returns the HTML for the row and its
// largest font size.
func renderRow(texts pdf.TextHorizontal) (string, float64) {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var (
		b       strings.Builder
		run     strings.Builder
		cur     style
		maxSize float64
		prevX   = math.Inf(-1)
		prevW   float64
	)

	flush := func() {
		if run.Len() == 0 {
			return
		}
		s := html.EscapeString(run.String())
		if cur.italic {
			s = "<i>" + s + "</i>"
		}
		if cur.bold {
			s = "<b>" + s + "</b>"
		}
		b.WriteString(s)
		run.Reset()
	}

	for i, t := range sorted {
		if t.FontSize > maxSize {
			maxSize = t.FontSize
		}
		st := fontStyle(t.Font)
		if i > 0 && st != cur {
			flush()
		}
		if i > 0 && wordBreak(prevX, prevW, t) && !strings.HasPrefix(t.S, " ") {
			if run.Len() > 0 {
				run.WriteByte(' ')
			} else {
				b.WriteByte(' ')
			}
		}
		cur = st
		run.WriteString(t.S)
		prevX, prevW = t.X, t.W
	}
	flush()
	return b.String(), maxSize
}

func wordBreak(prevX, prevW float64, t pdf.Text) bool {
	if prevW > 0 {
		return t.X-(prevX+prevW) > t.FontSize*0.2
	}
	return t.X-prevX > t.FontSize*1.1
}

// bodyFontSize returns the most common rounded font size on the page.
func bodyFontSize(rows pdf.Rows) float64 {
	counts := make(map[float64]int)
	for _, row := range rows {
		for _, t := range row.Content {
			counts[math.Round(t.FontSize)] += len(t.S)
		}
	}
	var best float64
	bestN := 0
	for size, n := range counts {
		if n > bestN || (n == bestN && size < best) {
			best, bestN = size, n
		}
	}
	return best
}
