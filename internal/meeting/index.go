// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package meeting

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/council-minutes/pkg/types"
)

// IndexFile is the per-meeting index name.
const IndexFile = "README.md"

// IndexEntry is one file line in the index. Markdown is the converted
// file name relative to the index, or empty when no text was extracted.
type IndexEntry struct {
	File     types.MeetingFile
	Markdown string
}

// RenderIndex returns the README content for m.
func RenderIndex(m types.Meeting, entries []IndexEntry) string {
	var b strings.Builder
	b.WriteString("# Meeting Details\n\n")
	fmt.Fprintf(&b, "**Meeting Name:** %s\n\n", m.Name)
	fmt.Fprintf(&b, "**Date and Time:** %s\n\n", formatDate(m))
	fmt.Fprintf(&b, "**[Link to Meeting](%s)**\n\n", m.Href)
	b.WriteString("Files: \n\n")

	if len(entries) == 0 {
		b.WriteString("No files available for this meeting.")
		return b.String()
	}

	for _, e := range entries {
		link := e.File.URL
		if link == "" {
			link = "#"
		}
		fmt.Fprintf(&b, "%s - [Original file](%s)", e.File.FileName, link)
		if e.Markdown != "" {
			fmt.Fprintf(&b, " - [Extracted text](./%s)", url.PathEscape(e.Markdown))
		} else {
			b.WriteString(" - Text not extracted")
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteIndex writes the README for m into outDir, creating it if needed.
func WriteIndex(outDir string, m types.Meeting, entries []IndexEntry) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating meeting output directory: %w", err)
	}
	path := filepath.Join(outDir, IndexFile)
	if err := os.WriteFile(path, []byte(RenderIndex(m, entries)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func formatDate(m types.Meeting) string {
	if m.DateTime.IsZero() {
		return ""
	}
	return m.DateTime.Format("2006-01-02 15:04:05")
}
