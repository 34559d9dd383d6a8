// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records every conversion and attendance extraction in a
// SQLite database and offers full-text search over the converted Markdown.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/council-minutes/internal/attendance"
	"github.com/pdiddy/council-minutes/pkg/types"
)

// Store is the conversion ledger.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Document identifies a converted file and the meeting it belongs to.
type Document struct {
	PDFPath     string
	Meeting     string
	MeetingDate time.Time
	SourceURL   string
}

// Open opens or creates the ledger at path and its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			converted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pdf_path TEXT NOT NULL UNIQUE,
			meeting TEXT,
			meeting_date TEXT,
			source_url TEXT,
			run_id TEXT REFERENCES runs(id),
			status TEXT NOT NULL,
			ocr_used INTEGER NOT NULL DEFAULT 0,
			pages INTEGER NOT NULL DEFAULT 0,
			ocr_pages TEXT,
			anomalies TEXT,
			error TEXT,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_meeting_date ON documents(meeting_date)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			document_id INTEGER PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
			run_id TEXT REFERENCES runs(id),
			area TEXT,
			chair TEXT,
			chair_status TEXT NOT NULL,
			members_status TEXT NOT NULL,
			mayor_present INTEGER NOT NULL DEFAULT 0,
			matched TEXT,
			unmatched TEXT,
			skipped_surnames TEXT
		)`,
		// FTS4 ships with the default go-sqlite3 build; docid mirrors documents.id.
		`CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts4(markdown)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a run and returns its ID.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id, nil
}

// FinishRun stores the final counts of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, converted, skipped, failed int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, converted = ?, skipped = ?, failed = ? WHERE id = ?`,
		s.now().UTC().Format(time.RFC3339), converted, skipped, failed, runID)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	return nil
}

// RecordConversion upserts the outcome of converting doc and returns the
// document ID. Converted documents replace their indexed Markdown; other
// statuses leave any earlier index entry in place.
func (s *Store) RecordConversion(ctx context.Context, runID string, doc Document, status types.ConversionStatus, res types.ConversionResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ocrPages, _ := json.Marshal(res.OCRPages)
	anomalies, _ := json.Marshal(res.Anomalies)
	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}
	meetingDate := ""
	if !doc.MeetingDate.IsZero() {
		meetingDate = doc.MeetingDate.Format(time.RFC3339)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO documents (pdf_path, meeting, meeting_date, source_url, run_id, status,
			ocr_used, pages, ocr_pages, anomalies, error, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pdf_path) DO UPDATE SET
			meeting=excluded.meeting, meeting_date=excluded.meeting_date,
			source_url=excluded.source_url, run_id=excluded.run_id, status=excluded.status,
			ocr_used=CASE WHEN excluded.status = 'converted' THEN excluded.ocr_used ELSE ocr_used END,
			pages=CASE WHEN excluded.status = 'converted' THEN excluded.pages ELSE pages END,
			ocr_pages=CASE WHEN excluded.status = 'converted' THEN excluded.ocr_pages ELSE ocr_pages END,
			anomalies=CASE WHEN excluded.status = 'converted' THEN excluded.anomalies ELSE anomalies END,
			error=excluded.error, updated_at=excluded.updated_at
		 RETURNING id`,
		doc.PDFPath, doc.Meeting, meetingDate, doc.SourceURL, runID, string(status),
		res.OCRUsed, res.Pages, string(ocrPages), string(anomalies), errText,
		s.now().UTC().Format(time.RFC3339),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting document: %w", err)
	}

	if status == types.ConversionDone {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE docid = ?`, id); err != nil {
			return 0, fmt.Errorf("clearing index: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents_fts (docid, markdown) VALUES (?, ?)`, id, res.Markdown); err != nil {
			return 0, fmt.Errorf("indexing markdown: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return id, nil
}

// RecordAttendance upserts the attendance extracted from a document.
func (s *Store) RecordAttendance(ctx context.Context, runID string, docID int64, ex attendance.Extraction) error {
	matched, _ := json.Marshal(ex.Matched)
	unmatched, _ := json.Marshal(ex.Unmatched)
	skipped, _ := json.Marshal(ex.SkippedSurnames)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (document_id, run_id, area, chair, chair_status, members_status,
			mayor_present, matched, unmatched, skipped_surnames)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET
			run_id=excluded.run_id, area=excluded.area, chair=excluded.chair,
			chair_status=excluded.chair_status, members_status=excluded.members_status,
			mayor_present=excluded.mayor_present, matched=excluded.matched,
			unmatched=excluded.unmatched, skipped_surnames=excluded.skipped_surnames`,
		docID, runID, ex.Area, ex.Chair.Text, string(ex.Chair.Status), string(ex.Members.Status),
		ex.MayorPresent, string(matched), string(unmatched), string(skipped),
	)
	if err != nil {
		return fmt.Errorf("recording attendance for document %d: %w", docID, err)
	}
	return nil
}
