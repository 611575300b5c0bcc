package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// Without options the style follows the terminal background.
func NewRenderer(opts ...glamour.TermRendererOption) (func(string) (string, error), error) {
	if len(opts) == 0 {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// ReportMarkdown describes a finished run as markdown.
func ReportMarkdown(rec *domain.RunRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run `%s`\n\n", rec.ID)

	switch {
	case rec.Halted():
		fmt.Fprintf(&sb, "**%s** after %d steps.\n\n", rec.Outcome, rec.Steps)
	case rec.Error != "":
		fmt.Fprintf(&sb, "**ABORTED** after %d steps: %s\n\n", rec.Steps, rec.Error)
	default:
		fmt.Fprintf(&sb, "**RUNNING** after %d steps.\n\n", rec.Steps)
	}

	sb.WriteString("| Field | Value |\n")
	sb.WriteString("| --- | --- |\n")
	row := func(k string, v any) {
		fmt.Fprintf(&sb, "| %s | `%v` |\n", k, v)
	}
	row("Machine", rec.Machine)
	row("Variant", rec.Variant)
	row("Input", rec.Input)
	row("Final state", rec.State)
	row("Head", rec.Head)
	row("Tape", rec.Tape)
	if !rec.FinishedAt.IsZero() && !rec.StartedAt.IsZero() {
		row("Duration", rec.FinishedAt.Sub(rec.StartedAt))
	}
	return sb.String()
}

// RenderReport renders the run report, falling back to raw markdown when rendering fails.
func RenderReport(render func(string) (string, error), rec *domain.RunRecord) string {
	md := ReportMarkdown(rec)
	if render == nil {
		return md
	}
	out, err := render(md)
	if err != nil {
		return md
	}
	return out
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
