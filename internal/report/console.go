// internal/report/console.go
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"github.com/anastev982/llm-eval-framework/internal/results"
)

var (
	summaryHeader = color.New(color.FgCyan, color.Bold)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	topStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
)

// PrintSummary writes the results table to out, ranked by average score.
func PrintSummary(out io.Writer, t results.Table) {
	if len(t) == 0 {
		fmt.Fprintln(out, "No results to summarize.")
		return
	}

	summaryHeader.Fprintln(out, "------- LLM EVALUATION SUMMARY -------")
	fmt.Fprintln(out, SummaryTable(t))
}

// SummaryTable renders the ranked results as a bordered table.
func SummaryTable(t results.Table) string {
	tasks := t.Tasks()
	headers := []string{"Model"}
	for _, task := range tasks {
		headers = append(headers, capitalize(task))
	}
	headers = append(headers, "Average")

	var rows [][]string
	for _, model := range t.RankModels() {
		row := []string{model}
		for _, task := range tasks {
			row = append(row, t.Get(model, task).String())
		}
		row = append(row, fmt.Sprintf("%.3f", results.AvgScore(t[model])))
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == 0:
				return topStyle
			default:
				return cellStyle
			}
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}
