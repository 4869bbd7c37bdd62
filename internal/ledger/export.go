// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/to-webp/pkg/types"
)

// Format selects how entries are written by Write.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q: use table, json, or yaml", s)
}

// Write renders entries to w in the given format.
func Write(w io.Writer, entries []Entry, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []Entry{}
		}
		return enc.Encode(entries)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	default:
		return writeTable(w, entries)
	}
}

func writeTable(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No conversions recorded.")
		return err
	}

	fmt.Fprintf(w, "%-5s  %-9s  %-10s  %-10s  %-20s  %s\n",
		"ID", "Status", "Before", "After", "Recorded", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	var before, after int64
	for _, e := range entries {
		fmt.Fprintf(w, "%-5d  %-9s  %-10d  %-10d  %-20s  %s\n",
			e.ID, e.Status, e.SourceBytes, e.TargetBytes,
			e.RecordedAt.Local().Format("2006-01-02 15:04:05"), e.Source)
		if e.Status == types.RecodeConverted {
			before += e.SourceBytes
			after += e.TargetBytes
		}
	}

	_, err := fmt.Fprintf(w, "\n%d entries, %d bytes converted to %d bytes\n", len(entries), before, after)
	return err
}
