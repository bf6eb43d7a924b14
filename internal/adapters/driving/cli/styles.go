package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// styles renders verdicts and headings. The renderer drops colour when the
// output is not a terminal.
type styles struct {
	tp      lipgloss.Style
	fp      lipgloss.Style
	low     lipgloss.Style
	heading lipgloss.Style
	faint   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		tp:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		fp:      r.NewStyle().Foreground(lipgloss.Color("8")),
		low:     r.NewStyle().Foreground(lipgloss.Color("11")),
		heading: r.NewStyle().Bold(true),
		faint:   r.NewStyle().Faint(true),
	}
}

func (s styles) verdict(v domain.Verdict) string {
	switch v {
	case domain.VerdictTruePositive:
		return s.tp.Render("TP")
	case domain.VerdictLowConfidence:
		return s.low.Render("LOW")
	default:
		return s.fp.Render("FP")
	}
}

// renderTable writes rows under header as a bordered table.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// truncate shortens s to n runes for table cells.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
