// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refine-normas/internal/ledger"
	"github.com/pdiddy/refine-normas/pkg/types"
)

const defaultLedgerPath = "refine.db"

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Report on and export recorded refine runs",
	Long: `Ledger reads the SQLite database written by "refine --ledger". Reports
reflect each file's latest successful run; dry runs are ignored.`,
}

// --- report subcommand ---

var ledgerReportCmd = &cobra.Command{
	Use:   "report",
	Short: "List recorded infraction annotations",
	Long: `Report lists the nota and responsables recorded for each infraction,
optionally filtered by responsibility tag or file. Use --tags for a count of
records per responsibility tag.`,
	RunE: runLedgerReport,
}

func runLedgerReport(cmd *cobra.Command, args []string) error {
	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	out := cmd.OutOrStdout()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if tags, _ := cmd.Flags().GetBool("tags"); tags {
		counts, err := l.TagCounts(cmd.Context())
		if err != nil {
			return err
		}
		return formatTagCounts(out, counts, jsonOutput)
	}

	records, err := l.Annotations(cmd.Context(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}
	return formatReport(out, records, jsonOutput)
}

func formatReport(w io.Writer, records []types.AnnotationRecord, jsonOutput bool) error {
	if jsonOutput {
		if records == nil {
			records = []types.AnnotationRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}

	fmt.Fprintf(w, "%-24s  %-5s  %-10s  %-40s  %s\n", "File", "Index", "Articulo", "Nota", "Responsables")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range records {
		fmt.Fprintf(w, "%-24s  %-5d  %-10s  %-40s  %s\n",
			truncate(r.File, 24), r.Index, truncate(r.Article, 10), truncate(r.Note, 40),
			strings.Join(r.Responsables, ", "))
	}

	fmt.Fprintf(w, "\n%d records\n", len(records))
	return nil
}

func formatTagCounts(w io.Writer, counts []ledger.TagCount, jsonOutput bool) error {
	if jsonOutput {
		if counts == nil {
			counts = []ledger.TagCount{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(counts)
	}

	if len(counts) == 0 {
		fmt.Fprintln(w, "No tagged records found.")
		return nil
	}
	for _, c := range counts {
		fmt.Fprintf(w, "%-14s %d\n", c.Tag, c.Count)
	}
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded annotations to YAML, JSON, or XLSX",
	Long: `Export writes the recorded annotations (or a filtered subset) to a file.
The default output path is export.<format> next to the ledger database.`,
	RunE: runLedgerExport,
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	l, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(ledgerPath(cmd)), "export."+format)
	}

	if err := l.Export(cmd.Context(), ledger.ExportFormat(format), queryOptsFromFlags(cmd), outPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", outPath)
	return nil
}

// --- shared helpers ---

func ledgerPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = viper.GetString("ledger.path")
	}
	if path == "" {
		path = defaultLedgerPath
	}
	return path
}

func openLedger(cmd *cobra.Command) (*ledger.Ledger, error) {
	return ledger.Open(types.LedgerConfig{
		Path:       ledgerPath(cmd),
		MaxResults: viper.GetInt("ledger.max_results"),
	})
}

func queryOptsFromFlags(cmd *cobra.Command) ledger.QueryOptions {
	responsable, _ := cmd.Flags().GetString("responsable")
	file, _ := cmd.Flags().GetString("file")
	extracted, _ := cmd.Flags().GetBool("extracted")
	limit, _ := cmd.Flags().GetInt("limit")

	return ledger.QueryOptions{
		Responsable:   responsable,
		File:          file,
		ExtractedOnly: extracted,
		MaxResults:    limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	ledgerCmd.PersistentFlags().String("db", "", "ledger database (default ledger.path or refine.db)")
	ledgerCmd.PersistentFlags().String("responsable", "", "filter by responsibility tag")
	ledgerCmd.PersistentFlags().String("file", "", "filter by document file name")
	ledgerCmd.PersistentFlags().Bool("extracted", false, "only records whose annotation block was extracted")

	// Report flags.
	ledgerReportCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	ledgerReportCmd.Flags().Bool("json", false, "output results as JSON")
	ledgerReportCmd.Flags().Bool("tags", false, "count records per responsibility tag")

	// Export flags.
	ledgerExportCmd.Flags().String("format", "xlsx", "export format: yaml, json, or xlsx")
	ledgerExportCmd.Flags().String("out", "", "output path (default export.<format> beside the database)")

	ledgerCmd.AddCommand(ledgerReportCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)

	rootCmd.AddCommand(ledgerCmd)
}
