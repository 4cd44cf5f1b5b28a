//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/aserto-dev/mage-loot/common"
	"github.com/aserto-dev/mage-loot/deps"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Quality namespace methods
// Note: Quality and Test types are defined in main.go

// Lint runs golangci-lint using mage-loot
func (Quality) Lint() error {
	fmt.Println("Running linter...")
	return common.Lint()
}

// Format runs the formatter chain: gci, golines, gofumpt, fieldalignment
func (Quality) Format() error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"gci", func() error {
			return deps.GoDep("gci")("write", "--skip-generated",
				"-s", "standard", "-s", "default",
				"-s", "prefix(github.com/doldam0/argspec)", ".")
		}},
		{"golines", func() error {
			return deps.GoDep("golines")("-w", "-m", "120", ".")
		}},
		{"gofumpt", func() error {
			return deps.GoDep("gofumpt")("-l", "-w", ".")
		}},
		{"fieldalignment", func() error {
			return sh.Run("go", "run",
				"golang.org/x/tools/go/analysis/passes/fieldalignment/cmd/fieldalignment@latest",
				"-fix", "./...")
		}},
	}
	for _, step := range steps {
		fmt.Printf("Formatting with %s...\n", step.name)
		if err := step.run(); err != nil {
			return fmt.Errorf("%s failed: %w", step.name, err)
		}
	}
	return nil
}

// Vet runs go vet
func (Quality) Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}

// Modernize rewrites code to current Go patterns. Not part of All; run it
// deliberately since it edits source.
func (Quality) Modernize() error {
	fmt.Println("Running Go modernize tool...")
	return sh.Run(
		"go",
		"run",
		"golang.org/x/tools/gopls/internal/analysis/modernize/cmd/modernize@latest",
		"-fix",
		"-test",
		"./...",
	)
}

// All runs the quality gate: format, vet, lint, unit tests
func (Quality) All() {
	mg.Deps(Quality.Format, Quality.Vet, Quality.Lint, Test.Unit)
}
