package ui

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
)

// RenderTable writes a bordered table with bold headers.
func RenderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	colors := make([]tablewriter.Colors, len(headers))
	for i := range colors {
		colors[i] = tablewriter.Colors{tablewriter.Bold}
	}
	table.SetHeaderColor(colors...)

	table.AppendBulk(rows)
	table.Render()
}

// RenderKeyValues writes a two-column borderless table.
func RenderKeyValues(w io.Writer, pairs [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(pairs)
	table.Render()
}

// NewProgressBar creates a track counter bar writing to w.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() { io.WriteString(w, "\n") }),
	)
}
