// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/council-minutes/internal/ledger"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Full-text search over converted meeting documents",
	Long: `Search queries the ledger's full-text index of converted Markdown. The
query uses SQLite FTS syntax: words, "quoted phrases", prefix* terms and
AND/OR/NOT. Results are ordered newest meeting first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.LedgerPath == "" {
			return fmt.Errorf("search needs a ledger (--ledger)")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()

		results, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		fmt.Fprint(out, renderSearch(results))
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("limit", 20, "maximum number of results to return")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
