package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the walkthrough banner to w, coloured when the
// terminal supports it.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`             _ _    _   _                      _    `, "#818cf8"},
		{` __ __ ____ _| | |__| |_| |_  _ _ ___ _  _ __ _| |_  `, "#a78bfa"},
		{` \ V  V / _' | | / /|  _| ' \| '_/ _ \ || / _' | ' \ `, "#c084fc"},
		{`  \_/\_/\__,_|_|_\_\ \__|_||_|_| \___/\_,_\__, |_||_|`, "#e879f9"},
		{`                                          |___/      `, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
