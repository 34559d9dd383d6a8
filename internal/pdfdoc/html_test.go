// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

// glyphs lays out s one character per Text, the way the PDF library
// reports shown strings.
func glyphs(font string, size, x float64, s string) pdf.TextHorizontal {
	var out pdf.TextHorizontal
	for _, r := range s {
		out = append(out, pdf.Text{Font: font, FontSize: size, X: x, W: size * 0.5, S: string(r)})
		x += size * 0.5
	}
	return out
}

func TestRenderHTML(t *testing.T) {
	title := glyphs("Helvetica-Bold", 18, 10, "Minutes")
	body := append(glyphs("Helvetica", 11, 10, "Present:"), glyphs("Helvetica", 11, 80, "Cllr Ryan")...)
	styled := append(glyphs("Helvetica", 11, 10, "Item "), glyphs("Helvetica-Oblique", 11, 37.5, "noted")...)
	escaped := glyphs("Helvetica", 11, 10, "A & B <c>")

	rows := pdf.Rows{
		{Position: 800, Content: title},
		{Position: 780, Content: body},
		{Position: 760, Content: styled},
		{Position: 740, Content: escaped},
		{Position: 720, Content: glyphs("Helvetica", 11, 10, "   ")},
	}

	got := renderHTML(rows, 2)

	assert.Contains(t, got, "<h2><b>Minutes</b></h2>")
	assert.Contains(t, got, "<p>Present: Cllr Ryan</p>")
	assert.Contains(t, got, "<p>Item <i>noted</i></p>")
	assert.Contains(t, got, "A &amp; B &lt;c&gt;")
	assert.Equal(t, 2, strings.Count(got, "<img"))
	assert.Equal(t, 3, strings.Count(got, "</p>")-2, "blank rows are dropped")
}

func TestRenderRow_ZeroWidthGlyphs(t *testing.T) {
	var texts pdf.TextHorizontal
	x := 10.0
	for _, r := range "Ab Cd" {
		texts = append(texts, pdf.Text{Font: "Helvetica", FontSize: 10, X: x, S: string(r)})
		x += 5
	}

	got, size := renderRow(texts)
	assert.Equal(t, "Ab Cd", got)
	assert.Equal(t, 10.0, size)
}

func TestBodyFontSize(t *testing.T) {
	rows := pdf.Rows{
		{Content: glyphs("Helvetica", 18, 0, "Head")},
		{Content: glyphs("Helvetica", 11, 0, "much longer body text")},
	}
	assert.Equal(t, 11.0, bodyFontSize(rows))
	assert.Equal(t, 0.0, bodyFontSize(nil))
}

func TestTextRows(t *testing.T) {
	texts := []pdf.Text{
		{S: "B", X: 10, Y: 700.2},
		{S: "A", X: 10, Y: 780.4},
		{S: "b", X: 15, Y: 699.9},
		{S: "a", X: 15, Y: 780.4},
	}

	rows := textRows(texts)
	if assert.Len(t, rows, 2) {
		assert.Equal(t, int64(780), rows[0].Position)
		assert.Equal(t, "Aa", rows[0].Content[0].S+rows[0].Content[1].S)
		assert.Equal(t, int64(700), rows[1].Position)
		assert.Equal(t, "Bb", rows[1].Content[0].S+rows[1].Content[1].S)
	}
	assert.Empty(t, textRows(nil))
}
