package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/scenec/lang"
)

// reportStyle renders the parts of an error report.
type reportStyle struct {
	label, kind, path, key lipgloss.Style
}

func newReportStyle(w io.Writer) reportStyle {
	r := lipgloss.NewRenderer(w)

	return reportStyle{
		label: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		kind:  r.NewStyle().Bold(true),
		path:  r.NewStyle().Foreground(lipgloss.Color("14")),
		key:   r.NewStyle().Faint(true),
	}
}

// Report writes a human-readable description of err to w.
//
// The first line is the full error message. When err carries a scene
// error, its kind and object path follow on their own lines. Structured
// attributes attached anywhere in the chain are listed last.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}

	s := newReportStyle(w)

	fmt.Fprintf(w, "%s %s\n", s.label.Render("error:"), err.Error())

	if le := (*lang.Error)(nil); errors.As(err, &le) {
		if le.Kind() != lang.Unclassified {
			fmt.Fprintf(w, "  %s %s\n", s.key.Render("kind:"), s.kind.Render(le.Kind().String()))
		}

		if p := le.Path(); p != "" {
			fmt.Fprintf(w, "  %s %s\n", s.key.Render("object:"), s.path.Render(p))
		}
	}

	for _, a := range reportAttrs(err) {
		fmt.Fprintf(w, "  %s %s\n", s.key.Render(a.Key+":"), a.Value.String())
	}
}

// Warn writes a single warning line to w.
func Warn(w io.Writer, msg string) {
	s := newReportStyle(w)

	fmt.Fprintf(w, "%s %s\n", s.label.Foreground(lipgloss.Color("11")).Render("warning:"), msg)
}

// reportAttrs collects the structured attributes of every error in the
// chain, skipping the message and cause already printed.
func reportAttrs(err error) []slog.Attr {
	var (
		out  []slog.Attr
		seen = map[string]bool{"error": true, "cause": true, "path": true}
	)

	for e := err; e != nil; e = errors.Unwrap(e) {
		lv, ok := e.(slog.LogValuer)
		if !ok {
			continue
		}

		v := lv.LogValue().Resolve()
		if v.Kind() != slog.KindGroup {
			continue
		}

		for _, a := range v.Group() {
			key := strings.ToLower(a.Key)
			if seen[key] {
				continue
			}

			seen[key] = true

			out = append(out, a)
		}
	}

	return out
}
