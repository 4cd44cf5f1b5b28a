package argspec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/doldam0/argspec/pkg/argspec/sources"
)

// Normalizer is implemented by spec structs that post-process parsed values.
// Normalize runs after every layer has been applied and before Validate.
type Normalizer interface {
	Normalize() error
}

// Validator is implemented by spec structs that check cross-field invariants
type Validator interface {
	Validate() error
}

// ColorMode controls whether help output is styled
type ColorMode int

const (
	// ColorAuto styles help only when the output is a terminal
	ColorAuto ColorMode = iota
	// ColorAlways styles help unconditionally
	ColorAlways
	// ColorNever disables styling
	ColorNever
)

// Parser parses argument vectors into a spec struct
type Parser struct {
	target reflect.Value
	spec   any
	out    io.Writer

	byLong  map[string]*Field
	byShort map[string]*Field
	fields  []*Field

	prog         string
	usage        string
	description  string
	epilog       string
	defaultsFile string

	color  ColorMode
	useEnv bool
}

// Option configures a Parser
type Option func(*Parser)

// WithProg overrides the program name shown in usage and errors
func WithProg(prog string) Option { return func(p *Parser) { p.prog = prog } }

// WithUsage replaces the generated usage line
func WithUsage(usage string) Option { return func(p *Parser) { p.usage = usage } }

// WithDescription sets the text shown between the usage line and the options
func WithDescription(description string) Option {
	return func(p *Parser) { p.description = description }
}

// WithEpilog sets the text shown after the options
func WithEpilog(epilog string) Option { return func(p *Parser) { p.epilog = epilog } }

// WithDefaultsFile layers option defaults from a YAML or TOML file between
// the environment and the command line.
func WithDefaultsFile(path string) Option { return func(p *Parser) { p.defaultsFile = path } }

// WithoutEnv disables the environment variable layer
func WithoutEnv() Option { return func(p *Parser) { p.useEnv = false } }

// WithOutput redirects help output, which defaults to stdout
func WithOutput(w io.Writer) Option { return func(p *Parser) { p.out = w } }

// WithColor sets the help styling mode
func WithColor(mode ColorMode) Option { return func(p *Parser) { p.color = mode } }

// New builds a Parser over a spec struct. spec must be a non-nil pointer to
// a struct; its exported fields become the declared options. Construction
// validates the whole spec and reports defects as *SpecError. It never
// parses: call Parse, ParseString or MustParse explicitly.
func New(spec any, opts ...Option) (*Parser, error) {
	rv := reflect.ValueOf(spec)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, specErr("", "spec must be a non-nil pointer to a struct")
	}

	fields, err := fieldsOf(rv.Elem().Type())
	if err != nil {
		return nil, err
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	p := &Parser{
		target:  rv.Elem(),
		spec:    spec,
		out:     os.Stdout,
		byLong:  make(map[string]*Field),
		byShort: make(map[string]*Field),
		fields:  fields,
		prog:    filepath.Base(os.Args[0]),
		useEnv:  true,
	}
	for _, f := range fields {
		p.byLong[f.Name] = f
		for _, l := range f.Long {
			p.byLong[l] = f
		}
		for _, s := range f.Short {
			p.byShort[s] = f
		}
		// Const literals must convert; catch that here, not on first use.
		if f.Kind == KindConst {
			if cerr := f.convert(reflect.New(f.elem).Elem(), f.Const); cerr != nil {
				return nil, specErr(f.Dest, "const literal %q is not a valid %s", f.Const, f.elem)
			}
		}
	}

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse applies every layer to the spec struct: declared defaults, then
// environment variables, then the defaults file, then argv. Later layers win.
// It returns the positional arguments left over after option parsing. When
// help is requested it writes the help text and returns ErrHelp.
func (p *Parser) Parse(argv []string) ([]string, error) {
	p.reset()
	seen := make(map[*Field]bool)

	for _, f := range p.fields {
		if f.HasDefault {
			if err := f.applyDefault(p.target); err != nil {
				return nil, err
			}
		}
	}

	if p.useEnv {
		if err := p.applyEnv(seen); err != nil {
			return nil, err
		}
	}
	if p.defaultsFile != "" {
		if err := p.applyDefaultsFile(seen); err != nil {
			return nil, err
		}
	}

	rest, err := p.applyArgv(argv, seen)
	if err != nil {
		return rest, err
	}

	if err := p.checkRequired(seen); err != nil {
		return rest, err
	}
	if n, ok := p.spec.(Normalizer); ok {
		if err := n.Normalize(); err != nil {
			return rest, err
		}
	}
	if v, ok := p.spec.(Validator); ok {
		if err := v.Validate(); err != nil {
			return rest, err
		}
	}
	return rest, nil
}

// ParseString whitespace-splits s and parses the result. Handy for tests and
// for argument lines stored in configuration.
func (p *Parser) ParseString(s string) ([]string, error) {
	return p.Parse(strings.Fields(s))
}

// MustParse parses os.Args[1:]. On a parse error it prints the error and the
// usage line to stderr and exits with status 2; on --help it exits 0 after
// the help text has been printed.
func (p *Parser) MustParse() []string {
	rest, err := p.Parse(os.Args[1:])
	if errors.Is(err, ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: error: %v\n", p.prog, err)
		fmt.Fprintln(os.Stderr, p.UsageLine())
		os.Exit(2)
	}
	return rest
}

// Fields returns the declared fields in declaration order
func (p *Parser) Fields() []*Field {
	return p.fields
}

// reset zeroes every declared field so repeated Parse calls on one target
// cannot leak values from a previous vector.
func (p *Parser) reset() {
	for _, f := range p.fields {
		fv := p.target.FieldByIndex(f.index)
		fv.Set(reflect.Zero(fv.Type()))
	}
}

func (p *Parser) applyEnv(seen map[*Field]bool) error {
	for _, f := range p.fields {
		if f.EnvKey == "" {
			continue
		}
		raw, ok := os.LookupEnv(f.EnvKey)
		if !ok {
			continue
		}
		// Env values pass the same choice and pattern checks as every
		// other layer.
		raws := []string{raw}
		if f.Kind == KindSlice {
			raws = splitList(raw)
		}
		for _, r := range raws {
			if err := f.check(r); err != nil {
				return err
			}
		}
		seen[f] = true
	}
	if err := sources.ParseEnv(p.spec); err != nil {
		return wrapParseErr(err, ErrCodeBadEnv, "", "environment layer failed")
	}
	return nil
}

func (p *Parser) applyDefaultsFile(seen map[*Field]bool) error {
	// A defaults file is consulted only if present
	if _, err := os.Stat(p.defaultsFile); os.IsNotExist(err) {
		return nil
	}
	values, err := sources.LoadFile(p.defaultsFile)
	if err != nil {
		return wrapParseErr(err, ErrCodeBadDefaults, "", "defaults file layer failed")
	}
	for key, value := range values {
		f, ok := p.byLong[key]
		if !ok {
			return parseErr(ErrCodeBadDefaults, "",
				"defaults file %s: unknown option %q", p.defaultsFile, key)
		}
		raws := renderFileValue(value)
		if err := f.apply(p.target, raws); err != nil {
			return err
		}
		seen[f] = true
	}
	return nil
}

// renderFileValue turns a decoded YAML/TOML value into raw strings so file
// defaults flow through the same conversion and validation path as argv.
func renderFileValue(value any) []string {
	if list, ok := value.([]any); ok {
		raws := make([]string, len(list))
		for i, item := range list {
			raws[i] = fmt.Sprint(item)
		}
		return raws
	}
	return []string{fmt.Sprint(value)}
}

func (p *Parser) applyArgv(argv []string, seen map[*Field]bool) ([]string, error) {
	var rest []string
	i := 0
	for i < len(argv) {
		tok := argv[i]
		switch {
		case tok == "--":
			return append(rest, argv[i+1:]...), nil
		case strings.HasPrefix(tok, "--"):
			next, err := p.consumeLong(argv, i, seen)
			if err != nil {
				return rest, err
			}
			i = next
		case isOptionLike(tok):
			next, err := p.consumeShort(argv, i, seen)
			if err != nil {
				return rest, err
			}
			i = next
		default:
			rest = append(rest, tok)
			i++
		}
	}
	return rest, nil
}

func (p *Parser) consumeLong(argv []string, i int, seen map[*Field]bool) (int, error) {
	name, inline, hasInline := strings.Cut(strings.TrimPrefix(argv[i], "--"), "=")

	f, ok := p.byLong[name]
	if !ok {
		if name == "help" {
			p.writeHelp()
			return 0, ErrHelp
		}
		return 0, parseErr(ErrCodeUnknownOption, "--"+name, "unknown option")
	}

	if !f.takesValue() {
		if hasInline {
			return 0, parseErr(ErrCodeBadValue, f.flag(), "option does not take a value")
		}
		if err := f.apply(p.target, nil); err != nil {
			return 0, err
		}
		seen[f] = true
		return i + 1, nil
	}

	values, next, err := p.collectValues(f, argv, i+1, inline, hasInline)
	if err != nil {
		return 0, err
	}
	if err := f.apply(p.target, values); err != nil {
		return 0, err
	}
	seen[f] = true
	return next, nil
}

func (p *Parser) consumeShort(argv []string, i int, seen map[*Field]bool) (int, error) {
	runes := []rune(argv[i][1:])
	for j, r := range runes {
		f, ok := p.byShort[string(r)]
		if !ok {
			if r == 'h' {
				p.writeHelp()
				return 0, ErrHelp
			}
			return 0, parseErr(ErrCodeUnknownOption, "-"+string(r), "unknown option")
		}

		if !f.takesValue() {
			if err := f.apply(p.target, nil); err != nil {
				return 0, err
			}
			seen[f] = true
			continue
		}

		// A value-taking short option ends the cluster; the remainder of the
		// token, if any, is its first value (-n5).
		inline := string(runes[j+1:])
		values, next, err := p.collectValues(f, argv, i+1, inline, inline != "")
		if err != nil {
			return 0, err
		}
		if err := f.apply(p.target, values); err != nil {
			return 0, err
		}
		seen[f] = true
		return next, nil
	}
	return i + 1, nil
}

// collectValues gathers the value tokens for a value-taking option starting
// at argv[i]. Collection stops at the next token that looks like an option;
// exact arities report the shortfall.
func (p *Parser) collectValues(
	f *Field, argv []string, i int, inline string, hasInline bool,
) ([]string, int, error) {
	var values []string
	if hasInline {
		values = append(values, inline)
	}

	if f.Kind == KindScalar {
		if hasInline {
			return values, i, nil
		}
		if i >= len(argv) || isOptionLike(argv[i]) {
			return nil, 0, parseErr(ErrCodeMissingValue, f.flag(), "expected one value")
		}
		return []string{argv[i]}, i + 1, nil
	}

	if f.Arity.variadic() {
		for i < len(argv) && !isOptionLike(argv[i]) {
			values = append(values, argv[i])
			i++
		}
		if len(values) < f.Arity.Min {
			return nil, 0, parseErr(ErrCodeBadArity, f.flag(),
				"expected at least %d value(s)", f.Arity.Min)
		}
		return values, i, nil
	}

	for len(values) < f.Arity.Exact && i < len(argv) && !isOptionLike(argv[i]) {
		values = append(values, argv[i])
		i++
	}
	if len(values) != f.Arity.Exact {
		return nil, 0, parseErr(ErrCodeBadArity, f.flag(),
			"expected %d values, got %d", f.Arity.Exact, len(values))
	}
	return values, i, nil
}

func (p *Parser) checkRequired(seen map[*Field]bool) error {
	var missing []string
	for _, f := range p.fields {
		if f.Required && !seen[f] {
			missing = append(missing, f.flag())
		}
	}
	if len(missing) > 0 {
		return parseErr(ErrCodeMissingRequired, "",
			"the following arguments are required: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (p *Parser) writeHelp() {
	fmt.Fprint(p.out, p.Help())
}

// isOptionLike reports whether a token should be treated as an option rather
// than a value. Negative numbers are values.
func isOptionLike(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return false
	}
	return true
}
