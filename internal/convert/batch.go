// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/council-minutes/pkg/types"
)

// Job is one PDF to convert and the Markdown file it produces.
type Job struct {
	PDFPath   string
	OutPath   string
	SourceURL string
}

// Name returns the file name used in status lines.
func (j Job) Name() string { return filepath.Base(j.PDFPath) }

// Options controls a batch run.
type Options struct {
	// Workers is the number of documents converted at once. Values below
	// one mean one.
	Workers int

	// Force re-converts jobs whose output already exists.
	Force bool
}

// Outcome is the result of one job.
type Outcome struct {
	Job    Job
	Status types.ConversionStatus
	Result types.ConversionResult
	Err    error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int

	// Outcomes are in job order.
	Outcomes []Outcome
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

type frontmatter struct {
	SourcePDF string `yaml:"source_pdf"`
	SourceURL string `yaml:"source_url,omitempty"`
	Pages     int    `yaml:"pages"`
	OCRUsed   bool   `yaml:"ocr_used"`
}

// ConvertFile converts a single job and writes its Markdown file. Existing
// output is left alone unless force is set. A status line is written to w.
func ConvertFile(ctx context.Context, c Converter, job Job, force bool, w io.Writer) Outcome {
	out := Outcome{Job: job}
	name := job.Name()

	if !force {
		if _, err := os.Stat(job.OutPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
			out.Status = types.ConversionSkipped
			return out
		}
	}

	out.Result = c.Convert(ctx, job.PDFPath)
	if !out.Result.Succeeded {
		out.Status, out.Err = types.ConversionFailed, out.Result.Err
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, out.Err)
		return out
	}

	content, err := render(job, out.Result)
	if err == nil {
		err = writeAtomic(job.OutPath, content)
	}
	if err != nil {
		out.Status, out.Err = types.ConversionFailed, err
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return out
	}

	if out.Result.OCRUsed {
		fmt.Fprintf(w, "converted: %s (OCR on %d of %d pages)\n", name, len(out.Result.OCRPages), out.Result.Pages)
	} else {
		fmt.Fprintf(w, "converted: %s\n", name)
	}
	out.Status = types.ConversionDone
	return out
}

// ConvertBatch runs jobs on a pool of opts.Workers goroutines, each owning
// one document end to end. Failed jobs never stop the others. Status lines
// are written to w as jobs finish; outcomes are returned in job order.
func ConvertBatch(ctx context.Context, c Converter, jobs []Job, opts Options, w io.Writer) BatchResult {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	sw := &syncWriter{w: w}
	outcomes := make([]Outcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			outcomes[i] = ConvertFile(gctx, c, job, opts.Force, sw)
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// OutputPath returns the Markdown path for pdfPath inside outDir.
func OutputPath(outDir, pdfPath string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(outDir, base+".md")
}

// render assembles the Markdown file: frontmatter, a link to the original,
// a separator, then the converted pages.
func render(job Job, res types.ConversionResult) (string, error) {
	fm, err := yaml.Marshal(frontmatter{
		SourcePDF: job.PDFPath,
		SourceURL: job.SourceURL,
		Pages:     res.Pages,
		OCRUsed:   res.OCRUsed,
	})
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	link := job.SourceURL
	if link == "" {
		link = job.PDFPath
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "[Original file](%s)\n\n---\n", link)
	b.WriteString(res.Markdown)
	return b.String(), nil
}

// writeAtomic writes content to a temporary file beside path and renames it
// into place, so readers never see a partial file.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*.md")
	if err != nil {
		return fmt.Errorf("create temp markdown: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp markdown: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp markdown: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename temp markdown: %w", err)
	}
	return nil
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
