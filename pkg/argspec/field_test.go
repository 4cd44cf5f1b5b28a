package argspec

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// typeOf returns the struct type behind a spec pointer
func typeOf(spec any) reflect.Type {
	return reflect.TypeOf(spec).Elem()
}

func TestOptionName(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"Foo", "foo"},
		{"NumClass", "num-class"},
		{"HTTPTimeout", "http-timeout"},
		{"MaxHTTPRetries", "max-http-retries"},
		{"A", "a"},
		{"Port8080", "port8080"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, optionName(tt.field))
		})
	}
}

func TestFieldDeclarationOrder(t *testing.T) {
	type spec struct {
		Third  string `arg:"c" default:""`
		First  string `arg:"a" default:""`
		Second string `arg:"b" default:""`
	}
	fields, err := fieldsOf(typeOf(&spec{}))
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, "c", fields[0].Name)
	assert.Equal(t, "a", fields[1].Name)
	assert.Equal(t, "b", fields[2].Name)
}

func TestEmbeddedSpecFlattening(t *testing.T) {
	type Common struct {
		Verbose bool `short:"v"`
	}
	type spec struct {
		Common
		Path string
	}
	fields, err := fieldsOf(typeOf(&spec{}))
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "verbose", fields[0].Name)
	assert.Equal(t, "path", fields[1].Name)
}

func TestUnexportedEmbedRejected(t *testing.T) {
	type hidden struct {
		Verbose bool
	}
	type spec struct {
		hidden //nolint:unused // exercises the unexported-embed rule
	}
	_, err := fieldsOf(typeOf(&spec{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be exported")
}

func TestSkippedFields(t *testing.T) {
	type spec struct {
		Keep    string `default:""`
		Ignored string `arg:"-"`
		hidden  string //nolint:unused // exercises the unexported-field rule
	}
	fields, err := fieldsOf(typeOf(&spec{}))
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "keep", fields[0].Name)
}

func TestRequiredRules(t *testing.T) {
	type spec struct {
		Maybe    *string
		Values   []int
		Plain    string
		WithDef  string `default:"x"`
		Flag     bool
		Constant *int   `const:"1"`
		Forced   string `required:"false"`
	}
	fields, err := fieldsOf(typeOf(&spec{}))
	require.NoError(t, err)

	required := make(map[string]bool, len(fields))
	for _, f := range fields {
		required[f.Dest] = f.Required
	}
	assert.False(t, required["Maybe"], "pointer fields are optional")
	assert.True(t, required["Values"], "slices without defaults stay required")
	assert.True(t, required["Plain"])
	assert.False(t, required["WithDef"], "a default makes a field optional")
	assert.False(t, required["Flag"], "flags are never required")
	assert.False(t, required["Constant"])
	assert.False(t, required["Forced"], "required tag overrides the rules")
}

func TestSpecDefects(t *testing.T) {
	tests := []struct {
		spec any
		name string
		want string
	}{
		{
			name: "unsupported type",
			spec: &struct {
				Ch chan int
			}{},
			want: "unsupported type",
		},
		{
			name: "nested slice",
			spec: &struct {
				M [][]int
			}{},
			want: "nested slice",
		},
		{
			name: "const on non-pointer",
			spec: &struct {
				C int `const:"1"`
			}{},
			want: "const requires a pointer",
		},
		{
			name: "multi-rune short",
			spec: &struct {
				S string `short:"ab"`
			}{},
			want: "single rune",
		},
		{
			name: "bad nargs",
			spec: &struct {
				N []int `nargs:"0"`
			}{},
			want: "invalid nargs",
		},
		{
			name: "nargs on scalar",
			spec: &struct {
				N int `nargs:"2"`
			}{},
			want: "only valid on slice",
		},
		{
			name: "duplicate long option",
			spec: &struct {
				A string `arg:"same"`
				B string `arg:"same"`
			}{},
			want: "already declared",
		},
		{
			name: "duplicate short alias",
			spec: &struct {
				A string `short:"x"`
				B string `short:"x"`
			}{},
			want: "already declared",
		},
		{
			name: "const literal does not convert",
			spec: &struct {
				C *int `const:"forty"`
			}{},
			want: "const literal",
		},
		{
			name: "invalid pattern",
			spec: &struct {
				P string `pattern:"("`
			}{},
			want: "invalid pattern",
		},
		{
			name: "not a struct pointer",
			spec: 42,
			want: "pointer to a struct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.spec, WithoutEnv())
			require.Error(t, err)
			var se *SpecError
			require.ErrorAs(t, err, &se)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInvocation(t *testing.T) {
	type spec struct {
		Baz *string `alias:"z,az"`
		Bar int     `short:"b" default:"0"`
	}
	fields, err := fieldsOf(typeOf(&spec{}))
	require.NoError(t, err)
	assert.Equal(t, "-z, --baz, --az", fields[0].Invocation())
	assert.Equal(t, "-b, --bar", fields[1].Invocation())
}
