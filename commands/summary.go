package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
)

type field struct {
	label string
	value any
}

// printSummary writes a short styled block, e.g.
//
//	analyze
//	files         12
//	failed        1
func printSummary(w io.Writer, title string, fields []field, failures []string) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')
	for _, f := range fields {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", f.label)))
		fmt.Fprintf(&b, "%v\n", f.value)
	}
	for _, f := range failures {
		b.WriteString(failStyle.Render("FAILED"))
		fmt.Fprintf(&b, " %s\n", f)
	}
	fmt.Fprint(w, b.String())
}
