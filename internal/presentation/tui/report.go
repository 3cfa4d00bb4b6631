package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/augtree/pkg/domain"
)

// RenderReport lays out a run report for a terminal, one line per command
// with the nodes each query found indented beneath it.
func RenderReport(report *domain.Report) string {
	var b strings.Builder
	for _, entry := range report.Entries {
		b.WriteString(renderEntry(entry))
	}

	if report.Changed {
		b.WriteString(ChangedStyle.Render("changed"))
	} else {
		b.WriteString(OKStyle.Render("no changes"))
	}
	b.WriteString("\n")
	return b.String()
}

func renderEntry(entry domain.Entry) string {
	var b strings.Builder
	r := entry.Result

	switch r.Kind {
	case domain.ResultChanged:
		if r.Changed {
			fmt.Fprintf(&b, "%s %s\n", ChangedStyle.Render("~"), CommandStyle.Render(entry.Text))
		} else {
			fmt.Fprintf(&b, "%s %s\n", OKStyle.Render("="), CommandStyle.Render(entry.Text))
		}
	case domain.ResultMatches:
		fmt.Fprintf(&b, "%s %s %s\n", MutedStyle.Render("?"), CommandStyle.Render(entry.Text),
			MutedStyle.Render(fmt.Sprintf("(%d)", len(r.Matches))))
		for _, m := range r.Matches {
			line := m.Label
			switch {
			case m.Value == nil:
			case *m.Value == "":
				line += " = " + domain.EmptyValue
			default:
				line += " = " + *m.Value
			}
			b.WriteString(MatchStyle.Render(line))
			b.WriteString("\n")
		}
	default:
		fmt.Fprintf(&b, "%s %s\n", MutedStyle.Render("-"), CommandStyle.Render(entry.Text))
	}
	return b.String()
}

// RenderError formats a failed run.
func RenderError(err error) string {
	return ErrorStyle.Render("error:") + " " + err.Error() + "\n"
}
