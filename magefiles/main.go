//go:build mage
// +build mage

package main

import (
	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
var Default = Build.All

// Aliases creates aliases for the nested targets
var Aliases = map[string]interface{}{
	"build":     Build.All,
	"test":      Test.Unit,
	"clean":     Clean.All,
	"lint":      Quality.Lint,
	"fmt":       Quality.Format,
	"vet":       Quality.Vet,
	"modernize": Quality.Modernize,
	"check":     Quality.All,
	"coverage":  Test.Coverage,
}

// Build namespace for build-related targets
type Build mg.Namespace

// Test namespace for testing-related targets
type Test mg.Namespace

// Quality namespace for code quality targets
type Quality mg.Namespace

// Clean namespace for cleanup targets
type Clean mg.Namespace
