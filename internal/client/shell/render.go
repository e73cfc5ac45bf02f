package shell

import (
	"fmt"
	"strings"

	"github.com/atinyakov/xenon/internal/client/ui"
	"github.com/atinyakov/xenon/internal/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	hintStyle   = lipgloss.NewStyle().Faint(true)
	labelStyle  = lipgloss.NewStyle().Bold(true)
)

var tableHeader = []string{"#", "Website", "Username", "Password", "Notes", "Strength", "Hint"}

// strengthCell renders the crack time on the annotation's colours.
func strengthCell(a models.Annotation) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(a.Background)).
		Foreground(lipgloss.Color(a.Foreground)).
		Padding(0, 1).
		Render(a.CrackTime)
}

func cells(i int, r ui.Row) []string {
	return []string{
		fmt.Sprint(i + 1),
		r.Entry.Website,
		r.Entry.Username,
		r.Entry.Password,
		r.Entry.Notes,
		strengthCell(r.Strength),
		hintStyle.Render(r.Strength.Hint),
	}
}

// renderTable lays rows out in aligned columns.
func renderTable(rows []ui.Row) string {
	if len(rows) == 0 {
		return "No entries.\n"
	}

	grid := [][]string{tableHeader}
	for i, r := range rows {
		grid = append(grid, cells(i, r))
	}
	widths := make([]int, len(tableHeader))
	for _, line := range grid {
		for c, v := range line {
			widths[c] = max(widths[c], lipgloss.Width(v))
		}
	}

	var b strings.Builder
	for n, line := range grid {
		parts := make([]string, len(line))
		for c, v := range line {
			style := cellStyle.Width(widths[c] + 2)
			if n == 0 {
				v = headerStyle.Render(v)
			}
			parts[c] = style.Render(v)
		}
		b.WriteString(strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *Shell) printTable() {
	fmt.Fprint(s.out, renderTable(s.screen.Table.Rows()))
	if st := s.screen.Status.String(); st != "" {
		fmt.Fprintln(s.out, st)
	}
}

func (s *Shell) printForm(title string, f FormFields) {
	fmt.Fprintln(s.out, labelStyle.Render(title+":"))
	for _, kv := range [][2]string{
		{"website", f.Website.Value()},
		{"username", f.Username.Value()},
		{"password", f.Password.Value()},
		{"notes", f.Notes.Value()},
	} {
		fmt.Fprintf(s.out, "  %-9s %s\n", kv[0], kv[1])
	}
}
