// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/council-minutes/internal/convert"
	"github.com/pdiddy/council-minutes/internal/ledger"
	"github.com/pdiddy/council-minutes/internal/meeting"
	"github.com/pdiddy/council-minutes/internal/ocr"
	"github.com/pdiddy/council-minutes/internal/ocrlog"
	"github.com/pdiddy/council-minutes/internal/pipeline"
	"github.com/pdiddy/council-minutes/internal/roster"
	"github.com/pdiddy/council-minutes/pkg/types"
)

// errFailures is returned when at least one document failed to convert.
var errFailures = errors.New("some documents failed to convert")

var convertCmd = &cobra.Command{
	Use:   "convert [pdfs...]",
	Short: "Convert meeting PDFs to Markdown",
	Long: `Convert walks the downloaded meeting tree for the selected months and
converts every downloaded PDF to Markdown. Pages without a text layer are
rendered and run through tesseract. Each meeting gets a README index linking
its documents, and minutes are scanned for attendance.

With PDF arguments, only those files are converted into --output-dir and the
meeting tree is not consulted.

Existing Markdown is left alone unless --force is given.`,
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	addConvertFlags(f)

	_ = viper.BindPFlag("force", f.Lookup("force"))
	_ = viper.BindPFlag("workers", f.Lookup("workers"))
	_ = viper.BindPFlag("ocr.backend", f.Lookup("ocr-backend"))

	rootCmd.AddCommand(convertCmd)
}

func addConvertFlags(f *pflag.FlagSet) {
	now := time.Now()
	f.Int("start-year", 2014, "first year to process")
	f.Int("start-month", 1, "first month to process")
	f.Int("end-year", now.Year(), "last year to process")
	f.Int("end-month", int(now.Month()), "last month to process")
	f.StringSlice("meeting-filter", nil, "only meetings whose name contains one of these words")
	f.StringSlice("file-filter", nil, "only files whose name contains one of these words")
	f.Bool("force", false, "re-convert documents whose Markdown already exists")
	f.Int("workers", 0, "documents converted in parallel (default: number of CPUs)")
	f.String("ocr-backend", "", "OCR backend: local or container")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.OCR.Backend == "" {
		cfg.OCR.Backend = types.OCRLocal
	}

	conv, rec, err := newConverter(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()
	logger.Debug().Str("path", rec.Path()).Msg("OCR usage log opened")

	if len(args) > 0 {
		return convertFiles(cmd, cfg, conv, args)
	}

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Converter: conv,
		Log:       logger,
		Out:       cmd.OutOrStdout(),
	}

	if cfg.RosterFile != "" {
		r, err := roster.Load(cfg.RosterFile)
		if err != nil {
			return err
		}
		deps.Roster = r
	}

	if cfg.LedgerPath != "" {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.Ledger = store
	}

	sum, err := pipeline.Run(cmd.Context(), cfg, req, deps)
	if err != nil {
		return err
	}
	if sum.Batch.HasFailures() {
		return errFailures
	}
	return nil
}

// convertFiles converts explicit PDF paths without the meeting tree.
func convertFiles(cmd *cobra.Command, cfg types.PipelineConfig, conv convert.Converter, paths []string) error {
	jobs := make([]convert.Job, 0, len(paths))
	for _, p := range paths {
		jobs = append(jobs, convert.Job{
			PDFPath: p,
			OutPath: convert.OutputPath(cfg.OutputDir, p),
		})
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	res := convert.ConvertBatch(cmd.Context(), conv, jobs, convert.Options{
		Workers: cfg.Workers,
		Force:   cfg.Force,
	}, cmd.OutOrStdout())
	if res.HasFailures() {
		return errFailures
	}
	return nil
}

// newConverter wires the OCR engine and the per-run OCR-usage log into a
// page converter. The caller closes the recorder.
func newConverter(cfg types.PipelineConfig) (*convert.PageConverter, *ocrlog.FileRecorder, error) {
	engine, err := ocr.New(cfg.OCR)
	if err != nil {
		return nil, nil, err
	}
	rec, err := ocrlog.OpenRun(cfg.LogDir)
	if err != nil {
		return nil, nil, err
	}
	return convert.NewPageConverter(engine, rec, logger), rec, nil
}

func requestFromFlags(cmd *cobra.Command) (pipeline.Request, error) {
	f := cmd.Flags()
	startYear, _ := f.GetInt("start-year")
	startMonth, _ := f.GetInt("start-month")
	endYear, _ := f.GetInt("end-year")
	endMonth, _ := f.GetInt("end-month")
	meetings, _ := f.GetStringSlice("meeting-filter")
	files, _ := f.GetStringSlice("file-filter")

	req := pipeline.Request{
		Range: meeting.Range{
			From: meeting.YearMonth{Year: startYear, Month: time.Month(startMonth)},
			To:   meeting.YearMonth{Year: endYear, Month: time.Month(endMonth)},
		},
		Filter: meeting.Filter{Meetings: meetings, Files: files},
	}
	if err := req.Range.Validate(); err != nil {
		return req, err
	}
	return req, nil
}
