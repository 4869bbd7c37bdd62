// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/to-webp/internal/audit"
	"github.com/pdiddy/to-webp/internal/rewrite"
	"github.com/pdiddy/to-webp/internal/settings"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report image references that still need conversion",
	Long: `Audit scans the posts directory without changing anything. For each
document it counts templated references still pointing at a non-WebP image,
references whose image is missing from the images directory, and plain
markdown images the converter does not rewrite.

Directories come from flags, the environment, or the settings file; audit
never prompts.`,
	RunE: runAudit,
}

// auditRow is the JSON form of one document report.
type auditRow struct {
	Document  string   `json:"document"`
	Pending   []string `json:"pending,omitempty"`
	Converted int      `json:"converted"`
	Missing   []string `json:"missing,omitempty"`
	Plain     []string `json:"plain,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func runAudit(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()
	cfg, err := settings.Resolve(settings.NewStore(fs, viper.GetString("settings")), nil, overrides())
	if err != nil {
		return err
	}

	reports, err := audit.New(fs).ScanDirectory(rewrite.DirLister{Fs: fs}, cfg.PostsDirectory, cfg.ImagesDirectory)
	if err != nil {
		return fmt.Errorf("listing %s: %w", cfg.PostsDirectory, err)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatAuditOutput(cmd.OutOrStdout(), reports, jsonOutput)
}

func formatAuditOutput(w io.Writer, reports []audit.Report, jsonOutput bool) error {
	if jsonOutput {
		rows := make([]auditRow, 0, len(reports))
		for _, r := range reports {
			row := auditRow{
				Document:  r.Path,
				Converted: len(r.Converted),
				Missing:   r.Missing,
				Plain:     r.Plain,
			}
			for _, ref := range r.Pending {
				row.Pending = append(row.Pending, ref.Raw)
			}
			if r.Err != nil {
				row.Error = r.Err.Error()
			}
			rows = append(rows, row)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Fprintf(w, "%-40s  %7s  %9s  %7s  %5s  %s\n",
		"Document", "Pending", "Converted", "Missing", "Plain", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, r := range reports {
		name := filepath.Base(r.Path)
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		status := "ok"
		switch {
		case r.Err != nil:
			status = "error: " + r.Err.Error()
		case len(r.Missing) > 0:
			status = "missing images"
		case len(r.Pending) > 0:
			status = "pending"
		case len(r.Plain) > 0:
			status = "plain images"
		}
		fmt.Fprintf(w, "%-40s  %7d  %9d  %7d  %5d  %s\n",
			name, len(r.Pending), len(r.Converted), len(r.Missing), len(r.Plain), status)
	}

	t := audit.Sum(reports)
	fmt.Fprintf(w, "\n%d documents: %d pending, %d converted, %d missing, %d plain, %d errors\n",
		t.Documents, t.Pending, t.Converted, t.Missing, t.Plain, t.Errors)
	return nil
}

func init() {
	auditCmd.Flags().Bool("json", false, "output reports as JSON")

	rootCmd.AddCommand(auditCmd)
}
