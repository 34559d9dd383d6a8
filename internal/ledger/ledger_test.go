// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/council-minutes/internal/attendance"
	"github.com/pdiddy/council-minutes/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func converted(markdown string) types.ConversionResult {
	return types.ConversionResult{Markdown: markdown, Succeeded: true, Pages: 2}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err, "schema creation must be repeatable")
	require.NoError(t, s.Close())
}

func TestBeginAndFinishRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.BeginRun(ctx)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	other, err := s.BeginRun(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	require.NoError(t, s.FinishRun(ctx, id, 3, 1, 0))

	var converted, skipped, failed int
	var finished string
	require.NoError(t, s.db.QueryRow(
		`SELECT converted, skipped, failed, finished_at FROM runs WHERE id = ?`, id,
	).Scan(&converted, &skipped, &failed, &finished))
	assert.Equal(t, []int{3, 1, 0}, []int{converted, skipped, failed})
	assert.NotEmpty(t, finished)
}

func TestRecordConversion_Search(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run, err := s.BeginRun(ctx)
	require.NoError(t, err)

	docs := []struct {
		doc      Document
		markdown string
	}{
		{
			doc:      Document{PDFPath: "dl/2024/01/minutes.pdf", Meeting: "Full Council", MeetingDate: time.Date(2024, 1, 22, 15, 0, 0, 0, time.UTC)},
			markdown: "The budget for 2024 was adopted on the proposal of Councillor Doyle.",
		},
		{
			doc:      Document{PDFPath: "dl/2023/12/minutes.pdf", Meeting: "Metropolitan", MeetingDate: time.Date(2023, 12, 14, 15, 0, 0, 0, time.UTC)},
			markdown: "Housing report noted. The draft budget was discussed.",
		},
		{
			doc:      Document{PDFPath: "dl/2023/11/agenda.pdf", Meeting: "Planning"},
			markdown: "Planning applications for Adare.",
		},
	}
	for _, d := range docs {
		_, err := s.RecordConversion(ctx, run, d.doc, types.ConversionDone, converted(d.markdown))
		require.NoError(t, err)
	}

	results, err := s.Search(ctx, "budget", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "dl/2024/01/minutes.pdf", results[0].PDFPath, "newest meeting first")
	assert.Equal(t, "Full Council", results[0].Meeting)
	assert.Contains(t, results[0].Snippet, "[budget]")

	results, err = s.Search(ctx, "budget", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = s.Search(ctx, "nonexistentword", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRecordConversion_Upsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run, err := s.BeginRun(ctx)
	require.NoError(t, err)

	doc := Document{PDFPath: "dl/minutes.pdf", Meeting: "Council"}
	first, err := s.RecordConversion(ctx, run, doc, types.ConversionDone, converted("old wording about drainage"))
	require.NoError(t, err)
	second, err := s.RecordConversion(ctx, run, doc, types.ConversionDone, converted("new wording about roads"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	old, err := s.Search(ctx, "drainage", 0)
	require.NoError(t, err)
	assert.Empty(t, old, "re-conversion replaces indexed text")

	current, err := s.Search(ctx, "roads", 0)
	require.NoError(t, err)
	assert.Len(t, current, 1)

	// A skipped or failed run keeps the last converted text searchable.
	_, err = s.RecordConversion(ctx, run, doc, types.ConversionSkipped, types.ConversionResult{})
	require.NoError(t, err)
	_, err = s.RecordConversion(ctx, run, doc, types.ConversionFailed, types.ConversionResult{Err: errors.New("corrupt")})
	require.NoError(t, err)

	current, err = s.Search(ctx, "roads", 0)
	require.NoError(t, err)
	assert.Len(t, current, 1)

	var status, errText string
	var pages int
	require.NoError(t, s.db.QueryRow(`SELECT status, error, pages FROM documents WHERE id = ?`, first).
		Scan(&status, &errText, &pages))
	assert.Equal(t, "failed", status)
	assert.Equal(t, "corrupt", errText)
	assert.Equal(t, 2, pages, "page count from the last conversion is kept")
}

func TestRecordAttendance_Export(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run, err := s.BeginRun(ctx)
	require.NoError(t, err)

	docID, err := s.RecordConversion(ctx, run,
		Document{PDFPath: "dl/minutes.pdf", Meeting: "Cappamore-Kilmallock MD", MeetingDate: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
		types.ConversionDone, converted("minutes"))
	require.NoError(t, err)

	ex := attendance.Extraction{
		Area:            "Cappamore-Kilmallock",
		Chair:           attendance.Section{Text: "Noreen Stokes", Status: attendance.SectionFound, Length: 24},
		Members:         attendance.Section{Status: attendance.SectionFound, Length: 40},
		MayorPresent:    true,
		Matched:         []attendance.Match{{Surname: "Teefy", Token: "Brigid Teefy"}},
		Unmatched:       []string{"Martin Ryan"},
		SkippedSurnames: []string{"Ryan"},
	}
	require.NoError(t, s.RecordAttendance(ctx, run, docID, ex))
	// Upsert replaces the earlier record.
	require.NoError(t, s.RecordAttendance(ctx, run, docID, ex))

	records, err := s.Attendance(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "dl/minutes.pdf", r.PDFPath)
	assert.Equal(t, "Cappamore-Kilmallock", r.Area)
	assert.Equal(t, "Noreen Stokes", r.Chair)
	assert.Equal(t, "found", r.ChairStatus)
	assert.True(t, r.MayorPresent)
	assert.Equal(t, ex.Matched, r.Matched)
	assert.Equal(t, []string{"Martin Ryan"}, r.Unmatched)
	assert.Equal(t, []string{"Ryan"}, r.SkippedSurnames)

	var y bytes.Buffer
	require.NoError(t, s.ExportAttendance(ctx, "yaml", &y))
	var fromYAML []AttendanceRecord
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &fromYAML))
	assert.Equal(t, records, fromYAML)

	var j bytes.Buffer
	require.NoError(t, s.ExportAttendance(ctx, "json", &j))
	var fromJSON []AttendanceRecord
	require.NoError(t, json.Unmarshal(j.Bytes(), &fromJSON))
	assert.Equal(t, records, fromJSON)

	err = s.ExportAttendance(ctx, "csv", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestAttendance_CorruptColumn(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run, err := s.BeginRun(ctx)
	require.NoError(t, err)

	docID, err := s.RecordConversion(ctx, run, Document{PDFPath: "dl/minutes.pdf"}, types.ConversionDone, converted("minutes"))
	require.NoError(t, err)
	require.NoError(t, s.RecordAttendance(ctx, run, docID, attendance.Extraction{
		Chair:     attendance.Section{Status: attendance.SectionFound},
		Members:   attendance.Section{Status: attendance.SectionFound},
		Unmatched: []string{"Martin Ryan"},
	}))

	_, err = s.db.ExecContext(ctx, `UPDATE attendance SET unmatched = '["Martin' WHERE document_id = ?`, docID)
	require.NoError(t, err)

	_, err = s.Attendance(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding unmatched of dl/minutes.pdf")

	err = s.ExportAttendance(ctx, "yaml", &bytes.Buffer{})
	assert.Error(t, err)
}
