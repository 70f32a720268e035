package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the goodapi ASCII banner.
func PrintBanner(w io.Writer, profile termenv.Profile) {
	lines := []struct {
		text, color string
	}{
		{"   ____                 _               _ ", "#34d399"},
		{"  / ___| ___   ___   __| | __ _ _ __ (_)", "#2dd4bf"},
		{" | |  _ / _ \\ / _ \\ / _` |/ _` | '_ \\| |", "#22d3ee"},
		{" | |_| | (_) | (_) | (_| | (_| | |_) | |", "#38bdf8"},
		{"  \\____|\\___/ \\___/ \\__,_|\\__,_| .__/|_|", "#60a5fa"},
		{"                               |_|      ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, profile.String(l.text).Foreground(profile.Color(l.color)))
	}
	fmt.Fprintln(w)
}
