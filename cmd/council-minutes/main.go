// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the council-minutes CLI. It converts
// downloaded council meeting PDFs to Markdown, extracts attendance from
// minutes, and queries the conversion ledger.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured by the root command before any subcommand runs.
var logger = zerolog.Nop()

// rootCmd is the base command for the council-minutes CLI.
var rootCmd = &cobra.Command{
	Use:   "council-minutes",
	Short: "Convert council meeting PDFs to Markdown and extract attendance",
	Long: `council-minutes turns the PDFs downloaded from the council meetings
calendar into Markdown, one file per document, with OCR for scanned pages.
Minutes are scanned for the chair and members present, and the members are
reconciled against the roster for the meeting's electoral area.

Every conversion and attendance extraction is recorded in a local SQLite
ledger that supports full-text search and export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = newLogger(verbose)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./council-minutes.yaml or ~/.config/council-minutes/council-minutes.yaml)")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.String("download-dir", "", "root of the downloaded meeting tree")
	pf.String("output-dir", "", "directory receiving Markdown and meeting indexes")
	pf.String("log-dir", "", "directory receiving the OCR-usage log")
	pf.String("ledger", "", "SQLite ledger file (empty disables the ledger)")
	pf.String("roster", "", "roster YAML file")

	for key, flag := range map[string]string{
		"download_dir": "download-dir",
		"output_dir":   "output-dir",
		"log_dir":      "log-dir",
		"ledger_path":  "ledger",
		"roster_file":  "roster",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}

	setDefaults()
}

func initConfig() {
	// Values from .env become ordinary environment variables.
	_ = godotenv.Load(".env")

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("council-minutes")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "council-minutes"))
		}
	}

	viper.SetEnvPrefix("COUNCIL_MINUTES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(verbose bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
