package main

import (
	"fmt"
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-isatty"
)

var (
	stdout = newPrinter(os.Stdout)
	stderr = newPrinter(os.Stderr)
)

type printer struct {
	w     io.Writer
	color bool

	value lipgloss.Style
	kind  lipgloss.Style
	fail  lipgloss.Style
	dim   lipgloss.Style
}

func newPrinter(f *os.File) *printer {
	return &printer{
		w:     f,
		color: useColor(f),
		value: lipgloss.NewStyle().Bold(true),
		kind:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		dim:   lipgloss.NewStyle().Faint(true),
	}
}

func useColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) render(style lipgloss.Style, str string) string {
	if !p.color {
		return str
	}
	return style.Render(str)
}

// Value prints str followed by its type.
func (p *printer) Value(str, kind string) {
	fmt.Fprintf(p.w, "%s %s", p.render(p.value, str), p.render(p.kind, "("+kind+")"))
	fmt.Fprintln(p.w)
}

func (p *printer) Line(str string) {
	fmt.Fprintln(p.w, str)
}

func (p *printer) Row(cols ...string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(p.w, " ")
		}
		switch i {
		case 0:
			fmt.Fprintf(p.w, "%-24s", c)
			continue
		case 1:
			c = p.render(p.dim, fmt.Sprintf("%-24s", c))
		default:
			c = p.render(p.kind, c)
		}
		fmt.Fprint(p.w, c)
	}
	fmt.Fprintln(p.w)
}

func (p *printer) Error(err error) {
	fmt.Fprintln(p.w, p.render(p.fail, err.Error()))
}
