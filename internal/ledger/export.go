// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refine-normas/pkg/types"
)

const (
	exportLimit = 1000000
	sheetName   = "Infracciones"
)

// ExportFormat selects the export file format.
type ExportFormat string

const (
	FormatYAML ExportFormat = "yaml"
	FormatJSON ExportFormat = "json"
	FormatXLSX ExportFormat = "xlsx"
)

// Export writes the current annotations matching opts to path in the given
// format. MaxResults in opts is ignored.
func (l *Ledger) Export(ctx context.Context, format ExportFormat, opts QueryOptions, path string) error {
	opts.MaxResults = exportLimit
	records, err := l.Annotations(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if records == nil {
		records = []types.AnnotationRecord{}
	}

	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return os.WriteFile(path, data, 0o644)
	case FormatJSON:
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return os.WriteFile(path, data, 0o644)
	case FormatXLSX:
		return writeXLSX(records, path)
	}
	return fmt.Errorf("unsupported format %q: use yaml, json, or xlsx", format)
}

var xlsxHeader = []any{"Archivo", "Índice", "Artículo", "Apartado", "Nota", "Responsables", "Extraída"}

func writeXLSX(records []types.AnnotationRecord, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		extracted := "no"
		if r.Extracted {
			extracted = "sí"
		}
		row := []any{r.File, r.Index, r.Article, r.Section, r.Note, strings.Join(r.Responsables, ", "), extracted}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
