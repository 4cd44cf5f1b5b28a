//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

// Build namespace methods
// Note: Build type is defined in main.go

// All compiles every package in the module
func (Build) All() error {
	fmt.Println("Building argspec...")
	return sh.Run("go", "build", "./...")
}

// Example builds the greet example binary
func (Build) Example() error {
	fmt.Println("Building greet example...")
	return sh.Run("go", "build", "-o", "bin/greet", "./examples/greet")
}
