package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the augtree banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _ _   _  __ _| |_ _ __ ___  ___ ", "#34d399"},
		{"  / _` | | | |/ _` | __| '__/ _ \\/ _ \\", "#2dd4bf"},
		{" | (_| | |_| | (_| | |_| | |  __/  __/", "#22d3ee"},
		{"  \\__,_|\\__,_|\\__, |\\__|_|  \\___|\\___|", "#38bdf8"},
		{"              |___/                   ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
