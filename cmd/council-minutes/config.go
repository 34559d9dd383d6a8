// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/council-minutes/internal/attendance"
	"github.com/pdiddy/council-minutes/internal/ocr"
	"github.com/pdiddy/council-minutes/pkg/types"
)

func setDefaults() {
	viper.SetDefault("download_dir", "data/meetings/downloaded")
	viper.SetDefault("output_dir", "meetings")
	viper.SetDefault("log_dir", ".logs")
	viper.SetDefault("ledger_path", ".state/ledger.db")
	viper.SetDefault("roster_file", "configs/roster.yaml")
	viper.SetDefault("workers", runtime.NumCPU())
	viper.SetDefault("force", false)

	viper.SetDefault("ocr.backend", string(types.OCRLocal))
	viper.SetDefault("ocr.image", ocr.DefaultImage)
	viper.SetDefault("ocr.dpi", ocr.DefaultDPI)
	viper.SetDefault("ocr.language", ocr.DefaultLanguage)
	viper.SetDefault("ocr.page_timeout", 2*time.Minute)

	viper.SetDefault("attendance.keywords", []string{"minutes"})
	viper.SetDefault("attendance.chair_max_len", attendance.DefaultChairMaxLen)
	viper.SetDefault("attendance.members_max_len", attendance.DefaultMembersMaxLen)
	viper.SetDefault("attendance.mayor_token", attendance.DefaultMayorToken)
}

// loadConfig decodes the merged flag, env, file and default values.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}
