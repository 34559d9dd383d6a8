// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/council-minutes/internal/attendance"
)

const defaultLimit = 20

// ErrUnknownFormat is returned by ExportAttendance for an unsupported format.
var ErrUnknownFormat = errors.New("unknown export format")

// SearchResult is one document matching a full-text query.
type SearchResult struct {
	PDFPath     string `json:"pdf_path" yaml:"pdf_path"`
	Meeting     string `json:"meeting" yaml:"meeting"`
	MeetingDate string `json:"meeting_date" yaml:"meeting_date"`
	SourceURL   string `json:"source_url" yaml:"source_url"`
	Snippet     string `json:"snippet" yaml:"snippet"`
}

// Search runs an FTS query over converted Markdown. Matches in the snippet
// are wrapped in square brackets. Newest meetings come first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.pdf_path, COALESCE(d.meeting, ''), COALESCE(d.meeting_date, ''),
			COALESCE(d.source_url, ''),
			snippet(documents_fts, '[', ']', '...', -1, 12)
		 FROM documents_fts
		 JOIN documents d ON d.id = documents_fts.docid
		 WHERE documents_fts MATCH ?
		 ORDER BY d.meeting_date DESC, d.pdf_path
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.PDFPath, &r.Meeting, &r.MeetingDate, &r.SourceURL, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// AttendanceRecord is the stored attendance of one document.
type AttendanceRecord struct {
	PDFPath         string             `json:"pdf_path" yaml:"pdf_path"`
	Meeting         string             `json:"meeting" yaml:"meeting"`
	MeetingDate     string             `json:"meeting_date" yaml:"meeting_date"`
	Area            string             `json:"area" yaml:"area"`
	Chair           string             `json:"chair" yaml:"chair"`
	ChairStatus     string             `json:"chair_status" yaml:"chair_status"`
	MembersStatus   string             `json:"members_status" yaml:"members_status"`
	MayorPresent    bool               `json:"mayor_present" yaml:"mayor_present"`
	Matched         []attendance.Match `json:"matched" yaml:"matched"`
	Unmatched       []string           `json:"unmatched" yaml:"unmatched"`
	SkippedSurnames []string           `json:"skipped_surnames" yaml:"skipped_surnames"`
}

// Attendance returns every stored attendance record ordered by meeting date.
func (s *Store) Attendance(ctx context.Context) ([]AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.pdf_path, COALESCE(d.meeting, ''), COALESCE(d.meeting_date, ''),
			COALESCE(a.area, ''), COALESCE(a.chair, ''), a.chair_status, a.members_status,
			a.mayor_present, a.matched, a.unmatched, a.skipped_surnames
		 FROM attendance a
		 JOIN documents d ON d.id = a.document_id
		 ORDER BY d.meeting_date, d.pdf_path`)
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	defer rows.Close()

	var records []AttendanceRecord
	for rows.Next() {
		var (
			r                           AttendanceRecord
			matched, unmatched, skipped sql.NullString
		)
		if err := rows.Scan(&r.PDFPath, &r.Meeting, &r.MeetingDate, &r.Area, &r.Chair,
			&r.ChairStatus, &r.MembersStatus, &r.MayorPresent,
			&matched, &unmatched, &skipped); err != nil {
			return nil, fmt.Errorf("scanning attendance: %w", err)
		}
		for _, col := range []struct {
			name string
			raw  sql.NullString
			dst  any
		}{
			{"matched", matched, &r.Matched},
			{"unmatched", unmatched, &r.Unmatched},
			{"skipped_surnames", skipped, &r.SkippedSurnames},
		} {
			if err := decodeJSON(col.raw, col.dst); err != nil {
				return nil, fmt.Errorf("decoding %s of %s: %w", col.name, r.PDFPath, err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ExportAttendance writes every attendance record to w as "yaml" or "json".
func (s *Store) ExportAttendance(ctx context.Context, format string, w io.Writer) error {
	records, err := s.Attendance(ctx)
	if err != nil {
		return err
	}

	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func decodeJSON(s sql.NullString, v any) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), v)
}
