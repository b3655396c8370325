package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table is a two-dimensional listing with a header rule. Cells may carry
// ANSI styling.
type Table struct {
	Headers []string
	Rows    [][]string
	// MaxWidth caps each column; longer cells end in an ellipsis.
	MaxWidth int
}

// Render lays the table out with lipgloss/table.
func (t *Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		cells := make([]string, len(t.Headers))
		for i := range cells {
			if i < len(r) {
				cells[i] = clip(r[i], t.MaxWidth)
			}
		}
		rows = append(rows, cells)
	}
	headers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = clip(h, t.MaxWidth)
	}

	head := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).PaddingRight(2)
	cell := lipgloss.NewStyle().PaddingRight(2)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleSubtle).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return head
			}
			return cell
		})
	return tbl.String() + "\n"
}

// clip shortens s to width visible cells, marking the cut with "…".
func clip(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return lipgloss.NewStyle().MaxWidth(width-1).Render(s) + "…"
}
