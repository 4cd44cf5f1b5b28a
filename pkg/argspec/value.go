package argspec

import (
	"encoding"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// apply writes raw string values into the target struct field after running
// the field's choice and pattern checks. It is the single conversion path for
// every layer: declared defaults, defaults files, and the argument vector.
func (f *Field) apply(target reflect.Value, raws []string) error {
	for _, raw := range raws {
		if err := f.check(raw); err != nil {
			return err
		}
	}

	fv := target.FieldByIndex(f.index)
	switch f.Kind {
	case KindFlag:
		// Presence means true; a layered default may carry an explicit value.
		raw := "true"
		if len(raws) == 1 {
			raw = raws[0]
		}
		return f.setScalar(fv, raw)
	case KindConst:
		return f.setScalar(fv, f.Const)
	case KindScalar:
		if len(raws) != 1 {
			return parseErr(ErrCodeBadArity, f.flag(), "expected one value, got %d", len(raws))
		}
		return f.setScalar(fv, raws[0])
	case KindSlice:
		return f.setSlice(fv, raws)
	}
	return nil
}

// check validates a raw value against the field's choices and pattern before
// any type conversion happens.
func (f *Field) check(raw string) error {
	if len(f.Choices) > 0 {
		ok := false
		for _, c := range f.Choices {
			if raw == c {
				ok = true
				break
			}
		}
		if !ok {
			return parseErr(ErrCodeBadChoice, f.flag(),
				"invalid choice %q (choose from %s)", raw, fmtChoices(f.Choices))
		}
	}
	if f.pattern != nil {
		match, err := f.pattern.MatchString(raw)
		if err != nil {
			return wrapParseErr(err, ErrCodePatternMismatch, f.flag(), "pattern check failed")
		}
		if !match {
			return parseErr(ErrCodePatternMismatch, f.flag(),
				"value %q does not match pattern %s", raw, f.pattern.String())
		}
	}
	return nil
}

func (f *Field) setScalar(fv reflect.Value, raw string) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	return f.convert(fv, raw)
}

func (f *Field) setSlice(fv reflect.Value, raws []string) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	slice := reflect.MakeSlice(fv.Type(), len(raws), len(raws))
	for i, raw := range raws {
		if err := f.convert(slice.Index(i), raw); err != nil {
			return err
		}
	}
	fv.Set(slice)
	return nil
}

// convert parses raw into a single addressable value of the field's element
// type. Types implementing encoding.TextUnmarshaler take precedence, which is
// how a spec attaches custom decoding and value transformation to a field.
func (f *Field) convert(fv reflect.Value, raw string) error {
	if fv.CanAddr() {
		if u, ok := fv.Addr().Interface().(encoding.TextUnmarshaler); ok {
			if err := u.UnmarshalText([]byte(raw)); err != nil {
				return wrapParseErr(err, ErrCodeBadValue, f.flag(), "invalid value "+strconv.Quote(raw))
			}
			return nil
		}
	}

	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return wrapParseErr(err, ErrCodeBadValue, f.flag(), "invalid duration "+strconv.Quote(raw))
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return wrapParseErr(err, ErrCodeBadValue, f.flag(), "invalid boolean "+strconv.Quote(raw))
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return wrapParseErr(err, ErrCodeBadValue, f.flag(), "invalid integer "+strconv.Quote(raw))
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return wrapParseErr(err, ErrCodeBadValue, f.flag(), "invalid unsigned integer "+strconv.Quote(raw))
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		x, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return wrapParseErr(err, ErrCodeBadValue, f.flag(), "invalid number "+strconv.Quote(raw))
		}
		fv.SetFloat(x)
	default:
		return parseErr(ErrCodeBadValue, f.flag(), "unsupported type %s", fv.Type())
	}
	return nil
}

// applyDefault fills the field from its declared default literal. Slice
// defaults are comma-separated.
func (f *Field) applyDefault(target reflect.Value) error {
	raws := []string{f.Default}
	if f.Kind == KindSlice {
		raws = splitList(f.Default)
	}
	if err := f.apply(target, raws); err != nil {
		return wrapParseErr(err, ErrCodeBadDefaults, f.flag(), "invalid declared default")
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// flag returns the primary display form of the option, used in errors
func (f *Field) flag() string {
	return "--" + f.Name
}
