package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/kent-id/dynamosql"
	"github.com/pterm/pterm"
)

var (
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SecondaryColor = lipgloss.Color("#6C757D")

	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
)

// PrintTitle prints a styled one-line title
func PrintTitle(title string, subtitle string) {
	fmt.Println(TitleStyle.Render(title) + " " + SecondaryStyle.Render(subtitle))
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	warningColor.Printf("⚠ "+format+"\n", args...)
}

// Confirm asks a yes/no question, defaulting to no
func Confirm(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

// TableData turns cursor columns and rows into printable cells, header first.
func TableData(columns []dynamosql.Column, rows []dynamosql.Row) [][]string {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.DisplayName
	}

	data := [][]string{header}
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				cells[i] = FormatValue(row[i])
			}
		}
		data = append(data, cells)
	}
	return data
}

// FormatValue renders one cell. Absent values are empty, collections are JSON.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return fmt.Sprintf("%x", t)
	case []interface{}, map[string]interface{}, dynamosql.Set:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// PrintRows prints rows as a table using pterm
func PrintRows(w io.Writer, columns []dynamosql.Column, rows []dynamosql.Row) error {
	return pterm.DefaultTable.
		WithHasHeader().
		WithWriter(w).
		WithData(TableData(columns, rows)).
		Render()
}

// PrintItemErrors prints the per-item failures of a batch or transaction
func PrintItemErrors(errs []dynamosql.ItemError) {
	for _, e := range errs {
		PrintWarning("%s", e)
	}
}
