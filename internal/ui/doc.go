// Package ui holds the terminal presentation helpers shared by CLI commands.
//
// [Palette] wraps lipgloss styles for titles, success, warnings and errors.
// [RenderTable] and [RenderKeyValues] print tablewriter tables, and
// [NewProgressBar] returns the per-track progress bar used while enriching.
//
// Styles degrade to plain text when the output is not a terminal.
package ui
