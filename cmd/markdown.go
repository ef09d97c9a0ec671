package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/etnz/tradelog"
)

// printMarkdown renders markdown for the terminal, or prints it raw if it
// cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

var (
	rejectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	resolvedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B"))

	unresolvedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	summaryStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)
)

// printDiagnostics prints reconciliation diagnostics to stderr. Rejections
// are only printed in verbose mode: they are followed by a resolution or an
// unresolved diagnostic anyway.
func printDiagnostics(ds []tradelog.Diagnostic, verbose bool) {
	for _, d := range ds {
		switch d.Kind {
		case tradelog.Rejected:
			if verbose {
				fmt.Fprintln(os.Stderr, rejectedStyle.Render("· "+d.String()))
			}
		case tradelog.Resolved:
			fmt.Fprintln(os.Stderr, resolvedStyle.Render("↺ "+d.String()))
		case tradelog.Unresolved:
			fmt.Fprintln(os.Stderr, unresolvedStyle.Render("✗ "+d.String()))
		}
	}
}
