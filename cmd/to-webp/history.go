// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/to-webp/internal/ledger"
	"github.com/pdiddy/to-webp/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List conversions recorded in the ledger",
	Long: `History reads the conversion ledger written by convert --ledger and
prints the most recent entries first. Filter by outcome with --status and
choose table, json, or yaml output with --format.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ledgerCfg := types.LedgerConfig{Path: viper.GetString("ledger")}
	if !ledgerCfg.Enabled() {
		return fmt.Errorf("no ledger configured: pass --ledger or set TO_WEBP_LEDGER")
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := ledger.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")
	opts := ledger.ListOptions{Status: types.RecodeStatus(status)}
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	switch opts.Status {
	case "", types.RecodeConverted, types.RecodeSkipped, types.RecodeFailed:
	default:
		return fmt.Errorf("unknown status %q: use converted, skipped, or failed", status)
	}

	store, err := ledger.Open(ledgerCfg.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), opts)
	if err != nil {
		return err
	}
	return ledger.Write(cmd.OutOrStdout(), entries, format)
}

func init() {
	historyCmd.Flags().String("status", "", "only entries with this outcome: converted, skipped, or failed")
	historyCmd.Flags().Int("limit", 50, "maximum number of entries")
	historyCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(historyCmd)
}
