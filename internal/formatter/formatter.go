// package formatter writes enrichment reports to various formats (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Extension returns the file extension for a report format.
func Extension(format string) string {
	switch format {
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".csv"
	}
}

// ExportToCSV converts report rows to CSV with columns: Song, Artist, BPM, Key, Duration, Energy
func ExportToCSV(rows []models.ResultRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(models.ReportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		if err := writer.Write(row.Record()); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts report rows to an indented JSON array.
func ExportToJSON(rows []models.ResultRow) ([]byte, error) {
	if rows == nil {
		rows = []models.ResultRow{}
	}
	data, err := shared.MarshalJSON(rows, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToMarkdown converts report rows to a Markdown table.
func ExportToMarkdown(rows []models.ResultRow) ([]byte, error) {
	var buf bytes.Buffer

	table := newTable(&buf)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	for _, row := range rows {
		record := row.Record()
		for i, cell := range record {
			record[i] = strings.ReplaceAll(cell, "|", `\|`)
		}
		table.Append(record)
	}
	table.Render()

	return buf.Bytes(), nil
}

// ExportToText converts report rows to an aligned plain text table.
func ExportToText(rows []models.ResultRow) ([]byte, error) {
	var buf bytes.Buffer

	table := newTable(&buf)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("-")
	for _, row := range rows {
		table.Append(row.Record())
	}
	table.Render()

	return buf.Bytes(), nil
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(models.ReportHeaders)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// Export renders rows in the given format.
func Export(rows []models.ResultRow, format string) ([]byte, error) {
	switch format {
	case "", FormatCSV:
		return ExportToCSV(rows)
	case FormatJSON:
		return ExportToJSON(rows)
	case FormatMarkdown:
		return ExportToMarkdown(rows)
	case FormatText:
		return ExportToText(rows)
	default:
		return nil, fmt.Errorf("%w: unsupported report format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportTo renders rows in the given format to w.
func ExportTo(w io.Writer, rows []models.ResultRow, format string) error {
	data, err := Export(rows, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteReport writes rows to path in the given format and returns the path written.
//
// An empty path defaults to setlist{ext}. Parent directories are created as needed.
func WriteReport(rows []models.ResultRow, format, path string) (string, error) {
	if path == "" {
		path = "setlist" + Extension(format)
	}

	data, err := Export(rows, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}
