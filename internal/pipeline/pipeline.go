// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a full conversion pass over the download tree:
// scan meetings, convert their PDFs in parallel, write the Markdown and
// per-meeting indexes, extract attendance from minutes and record
// everything in the ledger.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/council-minutes/internal/attendance"
	"github.com/pdiddy/council-minutes/internal/convert"
	"github.com/pdiddy/council-minutes/internal/ledger"
	"github.com/pdiddy/council-minutes/internal/meeting"
	"github.com/pdiddy/council-minutes/internal/roster"
	"github.com/pdiddy/council-minutes/pkg/types"
)

// DefaultKeywords select the files that get attendance extraction.
var DefaultKeywords = []string{"minutes"}

// Deps are the collaborators of a run. Roster and Ledger are optional.
type Deps struct {
	Converter convert.Converter
	Roster    *roster.Roster
	Ledger    *ledger.Store
	Log       zerolog.Logger

	// Out receives per-file status lines and the batch summary.
	Out io.Writer
}

// Request selects the meetings of a run.
type Request struct {
	Range  meeting.Range
	Filter meeting.Filter
}

// Summary counts what a run did.
type Summary struct {
	RunID      string
	Meetings   int
	Batch      convert.BatchResult
	Attendance int
	Flagged    int
}

// source ties a job back to its meeting and file.
type source struct {
	meeting int
	file    int
}

// Run executes one pass. Per-document failures are counted in the summary
// and never returned as errors; only scan and ledger setup failures are.
func Run(ctx context.Context, cfg types.PipelineConfig, req Request, deps Deps) (Summary, error) {
	log := deps.Log
	out := deps.Out
	if out == nil {
		out = io.Discard
	}
	var sum Summary

	meetings, err := meeting.Scan(cfg.DownloadDir, req.Range, req.Filter, log)
	if err != nil {
		return sum, fmt.Errorf("scanning meetings: %w", err)
	}
	sum.Meetings = len(meetings)
	log.Info().Int("meetings", len(meetings)).Str("dir", cfg.DownloadDir).Msg("scanned download tree")

	if deps.Ledger != nil {
		if sum.RunID, err = deps.Ledger.BeginRun(ctx); err != nil {
			return sum, err
		}
	}

	outDirs := make([]string, len(meetings))
	var (
		jobs    []convert.Job
		sources []source
	)
	for mi, m := range meetings {
		outDirs[mi] = outputDir(cfg, m)
		for fi, f := range m.Files {
			if !meeting.Eligible(m, f, req.Filter) {
				continue
			}
			pdfPath := meeting.FilePath(m, f)
			jobs = append(jobs, convert.Job{
				PDFPath:   pdfPath,
				OutPath:   convert.OutputPath(outDirs[mi], pdfPath),
				SourceURL: f.URL,
			})
			sources = append(sources, source{meeting: mi, file: fi})
		}
	}

	sum.Batch = convert.ConvertBatch(ctx, deps.Converter, jobs, convert.Options{
		Workers: cfg.Workers,
		Force:   cfg.Force,
	}, out)

	// Markdown file name per meeting file, for the index.
	extracted := make([]map[int]string, len(meetings))
	for i := range extracted {
		extracted[i] = make(map[int]string)
	}
	for i, o := range sum.Batch.Outcomes {
		if o.Status == types.ConversionDone || o.Status == types.ConversionSkipped {
			src := sources[i]
			extracted[src.meeting][src.file] = filepath.Base(o.Job.OutPath)
		}
	}

	for mi, m := range meetings {
		entries := make([]meeting.IndexEntry, len(m.Files))
		for fi, f := range m.Files {
			entries[fi] = meeting.IndexEntry{File: f, Markdown: extracted[mi][fi]}
		}
		if err := meeting.WriteIndex(outDirs[mi], m, entries); err != nil {
			log.Error().Err(err).Str("meeting", m.Name).Msg("writing meeting index")
		}
	}

	keywords := cfg.Attendance.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	extractor := attendance.New(attendance.FromConfig(cfg.Attendance))

	for i, o := range sum.Batch.Outcomes {
		m := meetings[sources[i].meeting]
		f := m.Files[sources[i].file]

		var docID int64
		if deps.Ledger != nil {
			docID, err = deps.Ledger.RecordConversion(ctx, sum.RunID, ledger.Document{
				PDFPath:     o.Job.PDFPath,
				Meeting:     m.Name,
				MeetingDate: m.DateTime,
				SourceURL:   f.URL,
			}, o.Status, o.Result)
			if err != nil {
				log.Error().Err(err).Str("pdf", o.Job.PDFPath).Msg("recording conversion")
			}
		}

		if o.Status != types.ConversionDone || deps.Roster == nil || !hasKeyword(f.FileName, keywords) {
			continue
		}

		area := deps.Roster.AreaFor(m.Name + " " + f.FileName)
		ex := extractor.Extract(o.Result.Text, area, deps.Roster.Members(area, m.DateTime))
		sum.Attendance++
		logExtraction(log, o.Job.PDFPath, ex)
		if ex.Flagged() {
			sum.Flagged++
		}

		if deps.Ledger != nil && docID != 0 {
			if err := deps.Ledger.RecordAttendance(ctx, sum.RunID, docID, ex); err != nil {
				log.Error().Err(err).Str("pdf", o.Job.PDFPath).Msg("recording attendance")
			}
		}
	}

	if deps.Ledger != nil {
		if err := deps.Ledger.FinishRun(ctx, sum.RunID, sum.Batch.Converted, sum.Batch.Skipped, sum.Batch.Failed); err != nil {
			log.Error().Err(err).Msg("finishing run")
		}
	}

	log.Info().
		Int("meetings", sum.Meetings).
		Int("converted", sum.Batch.Converted).
		Int("skipped", sum.Batch.Skipped).
		Int("failed", sum.Batch.Failed).
		Int("attendance", sum.Attendance).
		Int("flagged", sum.Flagged).
		Msg("run complete")
	return sum, nil
}

// Attend converts one PDF and extracts its attendance. An empty area is
// derived from the file name. A non-zero at filters members by term.
func Attend(ctx context.Context, conv convert.Converter, r *roster.Roster, x *attendance.Extractor, pdfPath, area string, at time.Time) (attendance.Extraction, error) {
	res := conv.Convert(ctx, pdfPath)
	if !res.Succeeded {
		return attendance.Extraction{}, res.Err
	}
	if area == "" {
		area = r.AreaFor(filepath.Base(pdfPath))
	}
	return x.Extract(res.Text, area, r.Members(area, at)), nil
}

// outputDir mirrors the meeting's position under the download root.
func outputDir(cfg types.PipelineConfig, m types.Meeting) string {
	rel, err := filepath.Rel(cfg.DownloadDir, m.Dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(m.Dir)
	}
	return filepath.Join(cfg.OutputDir, rel)
}

func hasKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func logExtraction(log zerolog.Logger, pdfPath string, ex attendance.Extraction) {
	ev := log.Debug()
	if ex.Flagged() {
		ev = log.Warn()
	}
	ev.Str("pdf", pdfPath).
		Str("area", ex.Area).
		Str("chair_status", string(ex.Chair.Status)).
		Int("chair_len", ex.Chair.Length).
		Str("members_status", string(ex.Members.Status)).
		Int("members_len", ex.Members.Length).
		Strs("unmatched", ex.Unmatched).
		Strs("skipped_surnames", ex.SkippedSurnames).
		Msg("attendance extracted")
}
