package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a defaults file into a map keyed by option name. The format
// is chosen by extension: .yaml/.yml or .toml.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read defaults file %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("defaults file %s is empty", path)
	}

	values := make(map[string]any)
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse defaults file %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse defaults file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported defaults file extension %q (want .yaml, .yml or .toml)", ext)
	}
	return values, nil
}
