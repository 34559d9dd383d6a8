// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/council-minutes/internal/pdffixture"
)

func TestParse_Unreadable(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a pdf", data: []byte("this is plain text, not a PDF")},
		{name: "truncated header", data: []byte("%PDF-1.4\n1 0 obj\n<<")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.name, tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDocumentUnreadable)
			assert.Nil(t, doc)
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentUnreadable)
}

func TestPageText(t *testing.T) {
	data := pdffixture.Build(t,
		pdffixture.Text("Minutes of Meeting", "Agenda item one"),
		pdffixture.Scanned(),
	)

	doc, err := Parse("fixture.pdf", data)
	require.NoError(t, err)
	require.Equal(t, 2, doc.NumPages())
	assert.Equal(t, "fixture.pdf", doc.ID())
	assert.Equal(t, data, doc.Bytes())

	plain, html, err := doc.Page(0).Text()
	require.NoError(t, err)
	assert.Contains(t, plain, "Minutes of Meeting")
	assert.Contains(t, plain, "Agenda item one")
	assert.Contains(t, html, "<p>")
	assert.Contains(t, html, "Agenda item one")
	assert.NotContains(t, html, "<img")

	plain, html, err = doc.Page(1).Text()
	require.NoError(t, err)
	assert.Empty(t, plain)
	assert.Empty(t, html)
}

func TestPageText_Layout(t *testing.T) {
	data := pdffixture.Build(t, pdffixture.Page{
		Heading: []string{"Limerick"},
		Bold:    []string{"MINUTES OF MEETING"},
		Lines:   []string{"1. Item one", "PRESENT IN THE CHAIR: Cllr A", "Noted & agreed"},
	})

	doc, err := Parse("layout.pdf", data)
	require.NoError(t, err)

	_, html, err := doc.Page(0).Text()
	require.NoError(t, err)

	assert.Contains(t, html, "<h2><b>Limerick</b></h2>")
	assert.Contains(t, html, "<p><b>MINUTES OF MEETING</b></p>")
	assert.Contains(t, html, "<p>1. Item one</p>")
	assert.Contains(t, html, "<p>PRESENT IN THE CHAIR: Cllr A</p>")
	assert.Contains(t, html, "<p>Noted &amp; agreed</p>")

	title := strings.Index(html, "Limerick")
	item := strings.Index(html, "Item one")
	chair := strings.Index(html, "PRESENT")
	assert.Less(t, title, item)
	assert.Less(t, item, chair)
}

func TestOpen_ReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := pdffixture.Write(t, dir, "agenda.pdf", pdffixture.Text("Agenda"))

	doc, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.ID())
	assert.Equal(t, 1, doc.NumPages())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Len(t, doc.Bytes(), int(info.Size()))
}

func TestPageNumbering(t *testing.T) {
	doc, err := Parse("x.pdf", pdffixture.Build(t, pdffixture.Text("a"), pdffixture.Text("b")))
	require.NoError(t, err)

	p := doc.Page(1)
	assert.Equal(t, 1, p.Index())
	assert.Equal(t, 2, p.Number())
}
