// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocrlog is the append-only audit log of documents that needed OCR.
// One event is one JSON line; concurrent writers never interleave.
package ocrlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// KindOCR is recorded once per document that had at least one scanned page.
const KindOCR = "ocr"

// fileTimeLayout names one log file per run.
const fileTimeLayout = "2006-01-02_15-04-05"

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("OCR log closed")

// Recorder accepts audit events.
type Recorder interface {
	Record(kind, message string) error
}

// Discard drops every event.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(string, string) error { return nil }

// FileRecorder appends events to a file, one line per event:
//
//	{"time":"<RFC3339 UTC>","kind":"<kind>","message":"<message>"}
type FileRecorder struct {
	f      *os.File
	log    zerolog.Logger
	path   string
	now    func() time.Time
	closed atomic.Bool
}

// RunFileName returns the log file name for a run started at t.
func RunFileName(t time.Time) string {
	return t.Format(fileTimeLayout) + "_ocr_usage.log"
}

// OpenRun creates logDir if needed and opens the log for a run starting now.
func OpenRun(logDir string) (*FileRecorder, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return Open(filepath.Join(logDir, RunFileName(time.Now())))
}

// Open opens path for appending, creating it if it does not exist.
func Open(path string) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening OCR log %s: %w", path, err)
	}
	return &FileRecorder{
		f:    f,
		log:  zerolog.New(zerolog.SyncWriter(f)),
		path: path,
		now:  time.Now,
	}, nil
}

// Path returns the log file path.
func (r *FileRecorder) Path() string { return r.path }

// Record appends one event.
func (r *FileRecorder) Record(kind, message string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.log.Log().
		Time(zerolog.TimestampFieldName, r.now().UTC()).
		Str("kind", kind).
		Str("message", message).
		Send()
	return nil
}

// Close closes the underlying file. Callers stop recording first.
func (r *FileRecorder) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	return r.f.Close()
}
