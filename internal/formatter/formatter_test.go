package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	th "github.com/desertthunder/setlist/internal/testing"
)

var testRows = []models.ResultRow{
	{Song: "Midnight City", Artist: "M83", BPM: "105", Key: "12B", Duration: "4:03", Energy: "0.71"},
	{Song: "Song, With Comma", Artist: "A|B", BPM: "N/A", Key: "N/A", Duration: "N/A", Energy: "N/A"},
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testRows)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header plus 2 records, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Song,Artist,BPM,Key,Duration,Energy" {
			t.Errorf("unexpected headers: %v", records[0])
		}
		if records[1][0] != "Midnight City" || records[1][4] != "4:03" {
			t.Errorf("unexpected first record: %v", records[1])
		}
		if records[2][0] != "Song, With Comma" || records[2][2] != "N/A" {
			t.Errorf("unexpected second record: %v", records[2])
		}
	})

	t.Run("ExportToCSV with no rows", func(t *testing.T) {
		data, err := ExportToCSV(nil)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if string(data) != "Song,Artist,BPM,Key,Duration,Energy\n" {
			t.Errorf("expected header only, got %q", data)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testRows)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var got []models.ResultRow
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(got) != 2 || got[0] != testRows[0] {
			t.Errorf("unexpected rows: %+v", got)
		}
		if !strings.Contains(string(data), `"song": "Midnight City"`) {
			t.Errorf("expected indented output, got %s", data)
		}
	})

	t.Run("ExportToJSON with no rows", func(t *testing.T) {
		data, err := ExportToJSON(nil)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got %q", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testRows)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header, separator and 2 rows, got %d lines:\n%s", len(lines), output)
		}
		for _, line := range lines {
			if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
				t.Errorf("expected table row, got %q", line)
			}
		}
		if !strings.Contains(lines[0], "Song") || !strings.Contains(lines[0], "Energy") {
			t.Errorf("missing headers: %q", lines[0])
		}
		if !strings.Contains(lines[1], "---") {
			t.Errorf("expected separator line, got %q", lines[1])
		}
		if !strings.Contains(output, `A\|B`) {
			t.Errorf("expected escaped pipe, got:\n%s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testRows)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Song", "Midnight City", "12B", "4:03", "Song, With Comma"} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("Export rejects unknown format", func(t *testing.T) {
		if _, err := Export(testRows, "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("ExportTo propagates write errors", func(t *testing.T) {
		if err := ExportTo(&th.FWriter{}, testRows, FormatCSV); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"":             ".csv",
		FormatCSV:      ".csv",
		FormatJSON:     ".json",
		FormatMarkdown: ".md",
		FormatText:     ".txt",
	}
	for format, want := range tests {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestWriteReport(t *testing.T) {
	t.Run("writes to the given path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "out.csv")

		got, err := WriteReport(testRows, FormatCSV, path)
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}

		th.AssertDirExists(t, filepath.Dir(path))
		th.AssertFileExists(t, path)
		content := th.MustReadFile(t, path)
		if !strings.HasPrefix(content, "Song,Artist,BPM,Key,Duration,Energy\n") {
			t.Errorf("unexpected content: %s", content)
		}
	})

	t.Run("defaults the file name by format", func(t *testing.T) {
		wd := th.MustGetwd(t)
		dir := t.TempDir()
		th.MustChdir(t, dir)
		defer th.MustChdir(t, wd)

		got, err := WriteReport(testRows, FormatMarkdown, "")
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if got != "setlist.md" {
			t.Errorf("expected setlist.md, got %s", got)
		}
		th.AssertFileExists(t, filepath.Join(dir, "setlist.md"))
	})

	t.Run("fails on unwritable path", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := WriteReport(testRows, FormatCSV, filepath.Join(blocker, "out.csv")); err == nil {
			t.Error("expected error writing beneath a regular file")
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xml")
		if _, err := WriteReport(testRows, "xml", path); err == nil {
			t.Error("expected error for unknown format")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no file to be written")
		}
	})
}
