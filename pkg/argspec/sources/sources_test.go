package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "defaults.yaml", "workers: 4\nhosts:\n  - a\n  - b\n")

	values, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, values["workers"])
	assert.Equal(t, []any{"a", "b"}, values["hosts"])
}

func TestLoadFileTOML(t *testing.T) {
	path := writeFile(t, "defaults.toml", "workers = 4\nhosts = [\"a\", \"b\"]\n")

	values, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), values["workers"])
	assert.Equal(t, []any{"a", "b"}, values["hosts"])
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unsupported extension", "defaults.json", "{}", "unsupported defaults file extension"},
		{"empty file", "defaults.yaml", "  \n", "is empty"},
		{"bad yaml", "defaults.yaml", "a: [\n", "failed to parse"},
		{"bad toml", "defaults.toml", "a = [\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestParseEnv(t *testing.T) {
	type target struct {
		Token string `env:"SOURCES_TEST_TOKEN"`
		Count int    `env:"SOURCES_TEST_COUNT"`
		Plain string
	}
	t.Setenv("SOURCES_TEST_TOKEN", "abc")
	t.Setenv("SOURCES_TEST_COUNT", "7")

	var tgt target
	tgt.Plain = "untouched"
	require.NoError(t, ParseEnv(&tgt))
	assert.Equal(t, "abc", tgt.Token)
	assert.Equal(t, 7, tgt.Count)
	assert.Equal(t, "untouched", tgt.Plain)
}

func TestParseEnvBadValue(t *testing.T) {
	type target struct {
		Count int `env:"SOURCES_TEST_BAD"`
	}
	t.Setenv("SOURCES_TEST_BAD", "not-a-number")

	var tgt target
	err := ParseEnv(&tgt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
