// Package cmdspec maps named argument specs onto subcommands. Each command
// pairs a spec struct with a run function; dispatch, help listing and version
// handling come from the CLI runner.
package cmdspec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/doldam0/argspec/pkg/argspec"
)

// Example represents a command example shown in help output
type Example struct {
	Command     string
	Description string
}

// Command binds one subcommand name to an argument spec and a run function
type Command struct {
	// NewSpec returns a fresh spec struct pointer for one invocation
	NewSpec func() any
	// Run receives the parsed spec and the leftover positional arguments
	Run func(spec any, rest []string) int

	Name        string
	Synopsis    string
	Description string
	Examples    []Example
	Notes       []string

	// ParserOptions are applied to the command's argument parser
	ParserOptions []argspec.Option
}

// App is a collection of subcommands sharing one program name
type App struct {
	Name     string
	Version  string
	commands []Command
}

// NewApp creates an App
func NewApp(name, version string) *App {
	return &App{Name: name, Version: version}
}

// Register adds a subcommand. Registration order has no meaning; the runner
// lists commands alphabetically.
func (a *App) Register(cmds ...Command) {
	a.commands = append(a.commands, cmds...)
}

// Run dispatches argv to the matching subcommand and returns its exit status
func (a *App) Run(argv []string) (int, error) {
	c := cli.NewCLI(a.Name, a.Version)
	c.Args = argv
	c.Commands = make(map[string]cli.CommandFactory, len(a.commands))
	for _, cmd := range a.commands {
		c.Commands[cmd.Name] = a.factory(cmd)
	}
	return c.Run()
}

func (a *App) factory(cmd Command) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &specCommand{app: a, def: cmd}, nil
	}
}

// specCommand adapts one Command to the CLI runner's command interface
type specCommand struct {
	app *App
	def Command
}

// Synopsis returns the short description shown in the command list
func (c *specCommand) Synopsis() string {
	return c.def.Synopsis
}

// Help returns the full help text for the subcommand
func (c *specCommand) Help() string {
	parser, err := c.parser(c.def.NewSpec())
	if err != nil {
		return fmt.Sprintf("internal error: %v", err)
	}

	var b strings.Builder
	b.WriteString(parser.Help())

	if len(c.def.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for _, example := range c.def.Examples {
			if example.Description != "" {
				b.WriteString(fmt.Sprintf("  %s  # %s\n", example.Command, example.Description))
			} else {
				b.WriteString(fmt.Sprintf("  %s\n", example.Command))
			}
		}
	}
	if len(c.def.Notes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, note := range c.def.Notes {
			b.WriteString(fmt.Sprintf("  • %s\n", note))
		}
	}
	return b.String()
}

// Run parses the subcommand's arguments and invokes its run function
func (c *specCommand) Run(args []string) int {
	spec := c.def.NewSpec()
	parser, err := c.parser(spec)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	rest, err := parser.Parse(args)
	if errors.Is(err, argspec.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Printf("Error parsing arguments: %v\n", err)
		return 1
	}
	return c.def.Run(spec, rest)
}

func (c *specCommand) parser(spec any) (*argspec.Parser, error) {
	opts := []argspec.Option{
		argspec.WithProg(c.app.Name + " " + c.def.Name),
		argspec.WithDescription(c.def.Description),
	}
	opts = append(opts, c.def.ParserOptions...)
	return argspec.New(spec, opts...)
}
