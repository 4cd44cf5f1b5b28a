package cmdspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doldam0/argspec/pkg/argspec"
)

type greetSpec struct {
	Name  string `help:"Who to greet."`
	Count int    `short:"c" default:"1" help:"Repeat count."`
}

func newGreetApp(captured *greetSpec, rest *[]string) *App {
	app := NewApp("demo", "1.0.0")
	app.Register(Command{
		Name:        "greet",
		Synopsis:    "Greet someone",
		Description: "Print a greeting the given number of times.",
		NewSpec:     func() any { return &greetSpec{} },
		Run: func(spec any, leftover []string) int {
			*captured = *spec.(*greetSpec)
			*rest = leftover
			return 0
		},
		ParserOptions: []argspec.Option{argspec.WithoutEnv(), argspec.WithColor(argspec.ColorNever)},
	})
	return app
}

func TestDispatch(t *testing.T) {
	var got greetSpec
	var rest []string
	app := newGreetApp(&got, &rest)

	code, err := app.Run([]string{"greet", "--name", "ada", "-c", "2", "extra"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "ada", got.Name)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, []string{"extra"}, rest)
}

func TestParseFailureExitCode(t *testing.T) {
	var got greetSpec
	var rest []string
	app := newGreetApp(&got, &rest)

	code, err := app.Run([]string{"greet", "--nope"})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestMissingRequiredExitCode(t *testing.T) {
	var got greetSpec
	var rest []string
	app := newGreetApp(&got, &rest)

	code, err := app.Run([]string{"greet"})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestCommandHelp(t *testing.T) {
	cmd := Command{
		Name:        "greet",
		Synopsis:    "Greet someone",
		Description: "Print a greeting.",
		NewSpec:     func() any { return &greetSpec{} },
		Run:         func(any, []string) int { return 0 },
		ParserOptions: []argspec.Option{
			argspec.WithoutEnv(),
			argspec.WithColor(argspec.ColorNever),
		},
		Examples: []Example{
			{Command: "demo greet --name ada", Description: "Greet Ada"},
		},
		Notes: []string{"Repeats once unless -c is given."},
	}
	app := NewApp("demo", "1.0.0")
	app.Register(cmd)

	sc := &specCommand{app: app, def: cmd}
	help := sc.Help()

	assert.Contains(t, help, "usage: demo greet")
	assert.Contains(t, help, "Print a greeting.")
	assert.Contains(t, help, "-c, --count")
	assert.Contains(t, help, "Examples:")
	assert.Contains(t, help, "demo greet --name ada  # Greet Ada")
	assert.Contains(t, help, "Notes:")
	assert.Contains(t, help, "Repeats once unless -c is given.")
	assert.Equal(t, "Greet someone", sc.Synopsis())
}

func TestRunnerVersion(t *testing.T) {
	app := NewApp("demo", "1.2.3")
	code, err := app.Run([]string{"--version"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}
