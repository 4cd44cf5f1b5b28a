// Package argspec provides declarative command-line argument parsing.
// A program describes its interface as a plain struct: every exported field
// is one --option, struct tags carry names, aliases, defaults, choices and
// constraints, and the field type determines how values are converted.
package argspec

import (
	"encoding"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
)

// Kind classifies how an option consumes tokens from the argument vector
type Kind int

const (
	// KindScalar takes exactly one value
	KindScalar Kind = iota
	// KindSlice takes a run of values governed by its arity
	KindSlice
	// KindFlag takes no value; presence sets the field to true
	KindFlag
	// KindConst takes no value; presence stores a fixed literal
	KindConst
)

// Arity describes how many values a KindSlice option consumes.
// Exact is -1 for variadic arities; Min is 0 for "*" and 1 for "+".
type Arity struct {
	Exact int
	Min   int
}

func (a Arity) variadic() bool { return a.Exact < 0 }

// Field is one declared argument: the binding between a struct field and the
// option it exposes on the command line.
type Field struct {
	pattern *regexp2.Regexp
	elem    reflect.Type

	Name    string
	Dest    string
	Help    string
	Metavar string
	Default string
	Const   string
	EnvKey  string

	index   []int
	Short   []string
	Long    []string
	Choices []string

	Arity Arity
	Kind  Kind

	HasDefault bool
	Required   bool
	Optional   bool
}

// Invocation returns the flag forms of the field joined for display,
// shortest first: "-n, --num-class".
func (f *Field) Invocation() string {
	forms := make([]string, 0, len(f.Short)+len(f.Long)+1)
	for _, s := range f.Short {
		forms = append(forms, "-"+s)
	}
	forms = append(forms, "--"+f.Name)
	for _, l := range f.Long {
		forms = append(forms, "--"+l)
	}
	return strings.Join(forms, ", ")
}

func (f *Field) takesValue() bool {
	return f.Kind == KindScalar || f.Kind == KindSlice
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	durationType        = reflect.TypeOf(time.Duration(0))
)

// fieldsOf builds the declared fields of a spec struct type in declaration
// order. Embedded structs are flattened in place so a spec can extend another
// spec and see all of its arguments.
func fieldsOf(t reflect.Type) ([]*Field, error) {
	var fields []*Field
	if err := collectFields(t, nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func collectFields(t reflect.Type, prefix []int, out *[]*Field) error {
	for i := range t.NumField() {
		sf := t.Field(i)
		index := append(append([]int{}, prefix...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			// Promoted fields behind an unexported embed are not settable.
			if !sf.IsExported() {
				return specErr(sf.Name, "embedded spec structs must be exported")
			}
			if err := collectFields(sf.Type, index, out); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() || sf.Tag.Get("arg") == "-" {
			continue
		}

		f, err := newField(sf, index)
		if err != nil {
			return err
		}
		*out = append(*out, f)
	}
	return nil
}

func newField(sf reflect.StructField, index []int) (*Field, error) {
	f := &Field{
		Name:    optionName(sf.Name),
		Dest:    sf.Name,
		Help:    sf.Tag.Get("help"),
		Metavar: sf.Tag.Get("metavar"),
		EnvKey:  sf.Tag.Get("env"),
		index:   index,
	}

	if name := sf.Tag.Get("arg"); name != "" {
		f.Name = strings.ReplaceAll(name, "_", "-")
	}
	if err := f.parseAliases(sf); err != nil {
		return nil, err
	}
	if choices := sf.Tag.Get("choice"); choices != "" {
		f.Choices = strings.Split(choices, ",")
		for i := range f.Choices {
			f.Choices[i] = strings.TrimSpace(f.Choices[i])
		}
	}
	if pat := sf.Tag.Get("pattern"); pat != "" {
		re, err := regexp2.Compile(pat, regexp2.None)
		if err != nil {
			return nil, specErr(sf.Name, "invalid pattern %q: %v", pat, err)
		}
		f.pattern = re
	}
	if def, ok := sf.Tag.Lookup("default"); ok {
		f.Default = def
		f.HasDefault = true
	}

	if err := f.resolveKind(sf); err != nil {
		return nil, err
	}
	if err := f.resolveArity(sf); err != nil {
		return nil, err
	}
	f.resolveRequired(sf)

	if req := sf.Tag.Get("required"); req != "" {
		v, err := strconv.ParseBool(req)
		if err != nil {
			return nil, specErr(sf.Name, "invalid required tag %q", req)
		}
		f.Required = v
	}
	return f, nil
}

func (f *Field) parseAliases(sf reflect.StructField) error {
	if short := sf.Tag.Get("short"); short != "" {
		if len([]rune(short)) != 1 {
			return specErr(sf.Name, "short alias %q must be a single rune", short)
		}
		f.Short = append(f.Short, short)
	}
	if aliases := sf.Tag.Get("alias"); aliases != "" {
		for alias := range strings.SplitSeq(aliases, ",") {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			if len([]rune(alias)) == 1 {
				f.Short = append(f.Short, alias)
			} else {
				f.Long = append(f.Long, strings.ReplaceAll(alias, "_", "-"))
			}
		}
	}
	return nil
}

func (f *Field) resolveKind(sf reflect.StructField) error {
	t := sf.Type

	if konst, ok := sf.Tag.Lookup("const"); ok {
		if t.Kind() != reflect.Pointer {
			return specErr(sf.Name, "const requires a pointer field so absence can be observed")
		}
		f.Kind = KindConst
		f.Const = konst
		f.Optional = true
		f.elem = t.Elem()
		return checkScalarType(sf.Name, f.elem)
	}

	if t.Kind() == reflect.Pointer {
		f.Optional = true
		t = t.Elem()
	}

	// A type that decodes itself is a scalar no matter its underlying kind.
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		f.Kind = KindScalar
		f.elem = t
		return nil
	}

	switch {
	case t.Kind() == reflect.Bool:
		f.Kind = KindFlag
		f.elem = t
	case t.Kind() == reflect.Slice:
		if t.Elem().Kind() == reflect.Slice {
			return specErr(sf.Name, "nested slice types are not supported")
		}
		f.Kind = KindSlice
		f.elem = t.Elem()
		return checkScalarType(sf.Name, f.elem)
	default:
		f.Kind = KindScalar
		f.elem = t
		return checkScalarType(sf.Name, f.elem)
	}
	return nil
}

func (f *Field) resolveArity(sf reflect.StructField) error {
	nargs, ok := sf.Tag.Lookup("nargs")
	if !ok {
		if f.Kind == KindSlice {
			f.Arity = Arity{Exact: -1, Min: 0}
		}
		return nil
	}
	if f.Kind != KindSlice {
		return specErr(sf.Name, "nargs is only valid on slice fields")
	}
	switch nargs {
	case "*":
		f.Arity = Arity{Exact: -1, Min: 0}
	case "+":
		f.Arity = Arity{Exact: -1, Min: 1}
	default:
		n, err := strconv.Atoi(nargs)
		if err != nil || n < 1 {
			return specErr(sf.Name, "invalid nargs %q", nargs)
		}
		f.Arity = Arity{Exact: n}
	}
	return nil
}

// resolveRequired applies the default requiredness rules: every option is
// required unless it has a declared default, is a presence flag, or its field
// is a pointer whose nil already encodes absence.
func (f *Field) resolveRequired(_ reflect.StructField) {
	switch {
	case f.HasDefault, f.Optional:
		f.Required = false
	case f.Kind == KindFlag, f.Kind == KindConst:
		f.Required = false
	default:
		f.Required = true
	}
}

func checkScalarType(field string, t reflect.Type) error {
	if reflect.PointerTo(t).Implements(textUnmarshalerType) || t.Implements(textUnmarshalerType) {
		return nil
	}
	if t == durationType {
		return nil
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	default:
		return specErr(field, "unsupported type %s", t)
	}
}

// optionName converts an exported field name to its public option name:
// NumClass becomes num-class, HTTPTimeout becomes http-timeout.
func optionName(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteRune('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return strings.ReplaceAll(b.String(), "_", "-")
}

// validateFields checks cross-field invariants after all fields are built
func validateFields(fields []*Field) error {
	longs := make(map[string]string)
	shorts := make(map[string]string)

	claimLong := func(name, dest string) error {
		if prev, ok := longs[name]; ok {
			return specErr(dest, "option --%s already declared by field %s", name, prev)
		}
		longs[name] = dest
		return nil
	}

	for _, f := range fields {
		if err := claimLong(f.Name, f.Dest); err != nil {
			return err
		}
		for _, l := range f.Long {
			if err := claimLong(l, f.Dest); err != nil {
				return err
			}
		}
		for _, s := range f.Short {
			if prev, ok := shorts[s]; ok {
				return specErr(f.Dest, "option -%s already declared by field %s", s, prev)
			}
			shorts[s] = f.Dest
		}
		if f.Kind == KindConst && f.HasDefault {
			return specErr(f.Dest, "const and default are mutually exclusive")
		}
	}
	return nil
}

func fmtChoices(choices []string) string {
	return strings.Join(choices, ", ")
}
