// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/pdiddy/council-minutes/internal/attendance"
	"github.com/pdiddy/council-minutes/internal/ledger"
)

// renderExtraction formats one extraction for the terminal.
func renderExtraction(pdfPath string, ex attendance.Extraction) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(pdfPath))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	row("Area", ex.Area)
	row("Chair", sectionValue(ex.Chair))
	row("Members section", sectionStatus(ex.Members))

	mayor := dimStyle.Render("no")
	if ex.MayorPresent {
		mayor = okStyle.Render("yes")
	}
	row("Mayor present", mayor)

	if len(ex.Matched) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("Matched (%d)", len(ex.Matched))))
		b.WriteString("\n")
		for _, m := range ex.Matched {
			b.WriteString("  ")
			b.WriteString(okStyle.Render(m.Surname))
			b.WriteString(dimStyle.Render("  " + m.Token))
			b.WriteString("\n")
		}
	}

	if len(ex.Unmatched) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("Unmatched (%d)", len(ex.Unmatched))))
		b.WriteString("\n")
		for _, u := range ex.Unmatched {
			b.WriteString("  ")
			b.WriteString(warnStyle.Render(u))
			b.WriteString("\n")
		}
	}

	if len(ex.SkippedSurnames) > 0 {
		b.WriteString("\n")
		row("Shared surnames", warnStyle.Render(strings.Join(ex.SkippedSurnames, ", ")))
	}
	return b.String()
}

func sectionValue(s attendance.Section) string {
	if s.Status == attendance.SectionFound {
		return s.Text
	}
	return sectionStatus(s)
}

func sectionStatus(s attendance.Section) string {
	switch s.Status {
	case attendance.SectionFound:
		return okStyle.Render(string(s.Status))
	case attendance.SectionTooLong:
		return errorStyle.Render(fmt.Sprintf("%s (%d chars)", s.Status, s.Length))
	default:
		return errorStyle.Render(string(s.Status))
	}
}

// renderSearch formats search results for the terminal.
func renderSearch(results []ledger.SearchResult) string {
	if len(results) == 0 {
		return dimStyle.Render("no matches") + "\n"
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(r.Meeting))
		if r.MeetingDate != "" {
			b.WriteString(dimStyle.Render("  " + r.MeetingDate))
		}
		b.WriteString("\n  ")
		b.WriteString(r.PDFPath)
		b.WriteString("\n  ")
		b.WriteString(r.Snippet)
		b.WriteString("\n")
	}
	return b.String()
}
