package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Table renders rows of text in aligned columns.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string

	// MaxCell truncates wider cells with an ellipsis. Zero means no limit.
	MaxCell int
	// Cursor highlights one row. Negative means none.
	Cursor int
	// Empty is shown instead of the body when there are no rows.
	Empty string
}

// NewTable creates a table with the given title and headers.
func NewTable(title string, headers ...string) *Table {
	return &Table{
		Title:   title,
		Headers: headers,
		Rows:    make([][]string, 0),
		Cursor:  -1,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

func (t *Table) cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if t.MaxCell > 0 && runewidth.StringWidth(s) > t.MaxCell {
		return runewidth.Truncate(s, t.MaxCell, "…")
	}
	return s
}

// View renders the table using the provided styles.
func (t *Table) View(styles Styles) string {
	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], lipgloss.Width(t.cell(row[i])))
		}
	}
	// one space of padding either side
	for i := range widths {
		widths[i] += 2
	}

	header := styles.Bold.Padding(0, 1)
	body := styles.Body.Padding(0, 1)
	selected := styles.Selected.Padding(0, 1)
	sep := styles.Muted.Render("│")

	cells := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		cells[i] = header.Width(widths[i]).Render(h)
	}
	sb.WriteString(strings.Join(cells, sep))
	sb.WriteString("\n")

	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styles.RenderDivider(total))
	sb.WriteString("\n")

	if len(t.Rows) == 0 {
		if t.Empty != "" {
			sb.WriteString(styles.Muted.Padding(0, 1).Render(t.Empty))
			sb.WriteString("\n")
		}
		return sb.String()
	}

	for r, row := range t.Rows {
		style := body
		if r == t.Cursor {
			style = selected
		}
		cells = cells[:0]
		for i, w := range widths {
			text := ""
			if i < len(row) {
				text = t.cell(row[i])
			}
			cells = append(cells, style.Width(w).Render(text))
		}
		sb.WriteString(strings.Join(cells, sep))
		sb.WriteString("\n")
	}
	return sb.String()
}
