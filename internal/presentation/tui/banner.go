package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the utm banner to w.
func PrintBanner(w io.Writer) {
	o := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  _   _ _____ __  __ ", "#818cf8"},
		{" | | | |_   _|  \\/  |", "#a78bfa"},
		{" | | | | | | | |\\/| |", "#c084fc"},
		{" | |_| | | | | |  | |", "#e879f9"},
		{"  \\___/  |_| |_|  |_|", "#f472b6"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, o.String(l.text).Foreground(o.Color(l.color)))
	}
	fmt.Fprintln(w)
}
