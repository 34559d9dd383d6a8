// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/council-minutes/internal/ledger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded attendance as YAML or JSON",
	Long: `Export writes every attendance record in the ledger, ordered by meeting
date, to stdout or to --out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.LedgerPath == "" {
			return fmt.Errorf("export needs a ledger (--ledger)")
		}
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if outPath == "" {
			return store.ExportAttendance(cmd.Context(), format, cmd.OutOrStdout())
		}
		return exportToFile(cmd.Context(), store, format, outPath)
	},
}

// exportToFile writes the export to path. A failed close is reported, since
// it can mean the data never reached the disk.
func exportToFile(ctx context.Context, store *ledger.Store, format, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return store.ExportAttendance(ctx, format, f)
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().String("out", "", "write to this file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}
