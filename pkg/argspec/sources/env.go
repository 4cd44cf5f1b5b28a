// Package sources loads argument defaults from outside the command line:
// process environment variables and YAML or TOML defaults files.
package sources

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target's env-tagged fields from the process environment.
// Fields opt in with an `env:"VAR"` tag; untagged fields are left alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
