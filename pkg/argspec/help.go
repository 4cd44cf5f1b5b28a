package argspec

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// helpColumn is the column where option descriptions start. Invocations that
// run past it push their description to the next line, argparse style.
const helpColumn = 26

// UsageLine returns the one-line usage summary
func (p *Parser) UsageLine() string {
	if p.usage != "" {
		return "usage: " + p.usage
	}

	parts := []string{"usage:", p.prog}
	if !p.hasUserHelp() {
		parts = append(parts, "[-h]")
	}
	for _, f := range p.fields {
		parts = append(parts, usagePart(f))
	}
	return strings.Join(parts, " ")
}

// Help returns the full help text: usage line, description, the option list
// in declaration order, and the epilog.
func (p *Parser) Help() string {
	st := p.styles()
	var b strings.Builder

	b.WriteString(p.UsageLine())
	b.WriteString("\n")

	if p.description != "" {
		b.WriteString("\n")
		b.WriteString(p.description)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(st.heading.Render("optional arguments:"))
	b.WriteString("\n")
	if !p.hasUserHelp() {
		writeOptionLine(&b, st, "-h, --help", "show this help message and exit")
	}
	for _, f := range p.fields {
		writeOptionLine(&b, st, invocationWithValue(f), describe(f))
	}

	if p.epilog != "" {
		b.WriteString("\n")
		b.WriteString(p.epilog)
		b.WriteString("\n")
	}
	return b.String()
}

func (p *Parser) hasUserHelp() bool {
	_, long := p.byLong["help"]
	_, short := p.byShort["h"]
	return long || short
}

type helpStyles struct {
	heading lipgloss.Style
	flag    lipgloss.Style
}

func (p *Parser) styles() helpStyles {
	if !p.colorEnabled() {
		return helpStyles{heading: lipgloss.NewStyle(), flag: lipgloss.NewStyle()}
	}
	// A renderer bound to the parser's output; the package default sniffs
	// stdout, which is wrong for any other writer and defeats ColorAlways.
	r := lipgloss.NewRenderer(p.out)
	if p.color == ColorAlways {
		r.SetColorProfile(termenv.ANSI)
	}
	return helpStyles{
		heading: r.NewStyle().Bold(true),
		flag:    r.NewStyle().Bold(true),
	}
}

func (p *Parser) colorEnabled() bool {
	switch p.color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if f, ok := p.out.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

func writeOptionLine(b *strings.Builder, st helpStyles, invocation, help string) {
	b.WriteString("  ")
	b.WriteString(st.flag.Render(invocation))
	if help == "" {
		b.WriteString("\n")
		return
	}
	if pad := helpColumn - 2 - len(invocation); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	} else {
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", helpColumn))
	}
	b.WriteString(help)
	b.WriteString("\n")
}

// usagePart renders one option for the usage line. Optional options are
// bracketed; the shortest flag form is shown.
func usagePart(f *Field) string {
	flag := "--" + f.Name
	if len(f.Short) > 0 {
		flag = "-" + f.Short[0]
	}
	part := flag
	if token := valueToken(f); token != "" {
		part += " " + token
	}
	if !f.Required {
		part = "[" + part + "]"
	}
	return part
}

func invocationWithValue(f *Field) string {
	inv := f.Invocation()
	if token := valueToken(f); token != "" {
		inv += " " + token
	}
	return inv
}

// valueToken renders the value placeholder(s) an option expects
func valueToken(f *Field) string {
	if !f.takesValue() {
		return ""
	}
	mv := f.Metavar
	if mv == "" {
		mv = strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
	}
	if f.Kind == KindScalar {
		return mv
	}
	switch {
	case f.Arity.Exact > 0:
		tokens := make([]string, f.Arity.Exact)
		for i := range tokens {
			tokens[i] = mv
		}
		return strings.Join(tokens, " ")
	case f.Arity.Min > 0:
		return fmt.Sprintf("%s [%s ...]", mv, mv)
	default:
		return fmt.Sprintf("[%s ...]", mv)
	}
}

// describe builds the help text for one option, appending its default and
// choices the way argparse does.
func describe(f *Field) string {
	parts := make([]string, 0, 3)
	if f.Help != "" {
		parts = append(parts, f.Help)
	}
	if f.HasDefault {
		parts = append(parts, fmt.Sprintf("(default: %s)", f.Default))
	}
	if len(f.Choices) > 0 {
		parts = append(parts, fmt.Sprintf("(choices: %s)", fmtChoices(f.Choices)))
	}
	return strings.Join(parts, " ")
}
