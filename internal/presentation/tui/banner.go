package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the amc banner followed by version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"    __ _ _ __ ___   ___", "#818cf8"},
		{"   / _` | '_ ` _ \\ / __|", "#a78bfa"},
		{"  | (_| | | | | | | (__", "#c084fc"},
		{"   \\__,_|_| |_| |_|\\___|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  actor machine compiler "+version).Faint())
	fmt.Fprintln(w)
}
