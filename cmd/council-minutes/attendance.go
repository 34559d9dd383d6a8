// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/council-minutes/internal/attendance"
	"github.com/pdiddy/council-minutes/internal/pipeline"
	"github.com/pdiddy/council-minutes/internal/roster"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance <pdf>",
	Short: "Extract attendance from one minutes PDF",
	Long: `Attendance converts a single minutes PDF and prints the chair, the members
present, and how each member token reconciled against the roster. The
electoral area is derived from the file name unless --area is given.

Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttendance,
}

func init() {
	f := attendanceCmd.Flags()
	f.String("area", "", "electoral area (default: derived from the file name)")
	f.String("at", "", "meeting date (YYYY-MM-DD) used to filter members by term")
	f.Bool("json", false, "output the extraction as JSON")

	rootCmd.AddCommand(attendanceCmd)
}

func runAttendance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RosterFile == "" {
		return fmt.Errorf("attendance needs a roster file (--roster)")
	}
	r, err := roster.Load(cfg.RosterFile)
	if err != nil {
		return err
	}

	area, _ := cmd.Flags().GetString("area")
	atStr, _ := cmd.Flags().GetString("at")
	asJSON, _ := cmd.Flags().GetBool("json")

	var at time.Time
	if atStr != "" {
		at, err = time.Parse(time.DateOnly, atStr)
		if err != nil {
			return fmt.Errorf("parsing --at: %w", err)
		}
	}

	conv, rec, err := newConverter(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	x := attendance.New(attendance.FromConfig(cfg.Attendance))
	ex, err := pipeline.Attend(cmd.Context(), conv, r, x, args[0], area, at)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ex)
	}
	fmt.Fprint(out, renderExtraction(args[0], ex))
	return nil
}
