// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/council-minutes/pkg/types"
)

// stubConverter returns canned results keyed by PDF path.
type stubConverter struct {
	mu       sync.Mutex
	results  map[string]types.ConversionResult
	calls    int
	active   atomic.Int32
	peak     atomic.Int32
	duration time.Duration
}

func (s *stubConverter) Convert(_ context.Context, pdfPath string) types.ConversionResult {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(s.duration)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if r, ok := s.results[pdfPath]; ok {
		return r
	}
	return types.ConversionResult{
		Succeeded: true,
		Pages:     1,
		Markdown:  "# " + filepath.Base(pdfPath) + "\n---\n",
	}
}

func TestConvertFile(t *testing.T) {
	tests := []struct {
		name       string
		result     *types.ConversionResult
		preCreate  bool
		force      bool
		wantStatus types.ConversionStatus
		wantLog    string
		wantCalls  int
	}{
		{
			name:       "successful conversion",
			wantStatus: types.ConversionDone,
			wantLog:    "converted: minutes.pdf",
			wantCalls:  1,
		},
		{
			name:       "skip existing markdown",
			preCreate:  true,
			wantStatus: types.ConversionSkipped,
			wantLog:    "skipped: minutes.pdf (already exists)",
		},
		{
			name:       "force overwrites existing markdown",
			preCreate:  true,
			force:      true,
			wantStatus: types.ConversionDone,
			wantLog:    "converted:",
			wantCalls:  1,
		},
		{
			name:       "unreadable document",
			result:     &types.ConversionResult{Err: errors.New("corrupt xref")},
			wantStatus: types.ConversionFailed,
			wantLog:    "failed:  minutes.pdf (corrupt xref)",
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			job := Job{
				PDFPath:   filepath.Join(dir, "minutes.pdf"),
				OutPath:   filepath.Join(dir, "out", "minutes.md"),
				SourceURL: "https://example.ie/minutes.pdf",
			}
			if tt.preCreate {
				require.NoError(t, os.MkdirAll(filepath.Dir(job.OutPath), 0o755))
				require.NoError(t, os.WriteFile(job.OutPath, []byte("existing"), 0o644))
			}

			stub := &stubConverter{results: map[string]types.ConversionResult{}}
			if tt.result != nil {
				stub.results[job.PDFPath] = *tt.result
			}

			var log bytes.Buffer
			out := ConvertFile(context.Background(), stub, job, tt.force, &log)

			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Contains(t, log.String(), tt.wantLog)
			assert.Equal(t, tt.wantCalls, stub.calls)

			data, err := os.ReadFile(job.OutPath)
			switch {
			case tt.wantStatus == types.ConversionFailed:
				assert.True(t, os.IsNotExist(err), "failed conversion must not write output")
			case tt.wantStatus == types.ConversionSkipped:
				assert.Equal(t, "existing", string(data))
			default:
				require.NoError(t, err)
				assert.Contains(t, string(data), "# minutes.pdf")
			}
		})
	}
}

func TestConvertFile_Layout(t *testing.T) {
	dir := t.TempDir()
	job := Job{
		PDFPath:   filepath.Join(dir, "minutes.pdf"),
		OutPath:   filepath.Join(dir, "minutes.md"),
		SourceURL: "https://example.ie/minutes.pdf",
	}
	stub := &stubConverter{results: map[string]types.ConversionResult{
		job.PDFPath: {Succeeded: true, OCRUsed: true, Pages: 2, OCRPages: []int{1}, Markdown: "Page one\n---\nPage two\n---\n"},
	}}

	var log bytes.Buffer
	out := ConvertFile(context.Background(), stub, job, false, &log)
	require.Equal(t, types.ConversionDone, out.Status)
	assert.Contains(t, log.String(), "OCR on 1 of 2 pages")

	data, err := os.ReadFile(job.OutPath)
	require.NoError(t, err)
	content := string(data)

	require.True(t, strings.HasPrefix(content, "---\n"))
	parts := strings.SplitN(content, "---\n", 3)
	require.Len(t, parts, 3)

	var fm frontmatter
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &fm))
	assert.Equal(t, job.PDFPath, fm.SourcePDF)
	assert.Equal(t, job.SourceURL, fm.SourceURL)
	assert.True(t, fm.OCRUsed)
	assert.Equal(t, 2, fm.Pages)

	assert.True(t, strings.HasPrefix(parts[2], "\n[Original file](https://example.ie/minutes.pdf)\n\n---\nPage one"))
	assert.NotContains(t, content, "converted_at")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestConvertFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	job := Job{PDFPath: filepath.Join(dir, "a.pdf"), OutPath: filepath.Join(dir, "a.md")}
	stub := &stubConverter{}

	var log bytes.Buffer
	ConvertFile(context.Background(), stub, job, false, &log)
	first, err := os.ReadFile(job.OutPath)
	require.NoError(t, err)

	ConvertFile(context.Background(), stub, job, true, &log)
	second, err := os.ReadFile(job.OutPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestConvertBatch(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for _, name := range []string{"a", "b", "c", "d"} {
		jobs = append(jobs, Job{
			PDFPath: filepath.Join(dir, name+".pdf"),
			OutPath: filepath.Join(dir, "md", name+".md"),
		})
	}

	// b already converted, c fails.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "md"), 0o755))
	require.NoError(t, os.WriteFile(jobs[1].OutPath, []byte("existing"), 0o644))
	stub := &stubConverter{results: map[string]types.ConversionResult{
		jobs[2].PDFPath: {Err: errors.New("unreadable")},
	}}

	var log bytes.Buffer
	result := ConvertBatch(context.Background(), stub, jobs, Options{Workers: 3}, &log)

	assert.Equal(t, 2, result.Converted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 4, result.Total())
	assert.True(t, result.HasFailures())
	assert.Contains(t, log.String(), "Batch summary: 2 converted, 1 skipped, 1 failed (total: 4)")

	require.Len(t, result.Outcomes, 4)
	for i, o := range result.Outcomes {
		assert.Equal(t, jobs[i], o.Job, "outcomes must follow job order")
	}
	assert.Equal(t, types.ConversionFailed, result.Outcomes[2].Status)
	assert.EqualError(t, result.Outcomes[2].Err, "unreadable")

	_, err := os.Stat(jobs[3].OutPath)
	assert.NoError(t, err, "a failed job must not stop later jobs")
}

func TestConvertBatch_WorkerLimit(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for i := 0; i < 12; i++ {
		jobs = append(jobs, Job{
			PDFPath: filepath.Join(dir, fmt.Sprintf("%02d.pdf", i)),
			OutPath: filepath.Join(dir, fmt.Sprintf("%02d.md", i)),
		})
	}
	stub := &stubConverter{duration: 10 * time.Millisecond}

	var log bytes.Buffer
	result := ConvertBatch(context.Background(), stub, jobs, Options{Workers: 3}, &log)

	assert.Equal(t, 12, result.Converted)
	assert.LessOrEqual(t, stub.peak.Load(), int32(3))

	// Every status line is intact.
	lines := strings.Split(strings.TrimSpace(log.String()), "\n")
	converted := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "converted: ") {
			converted++
		}
	}
	assert.Equal(t, 12, converted)
}

func TestBatchResult(t *testing.T) {
	r := BatchResult{Converted: 2, Skipped: 1}
	assert.Equal(t, 3, r.Total())
	assert.False(t, r.HasFailures())
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "Minutes Jan.md"), OutputPath("out", filepath.Join("dl", "Minutes Jan.pdf")))
}
