package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("POETRY_TEST_A", "")
	t.Setenv("POETRY_TEST_B", "old")
	t.Setenv("POETRY_TEST_C", "")

	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment line\n\nPOETRY_TEST_A=alpha\nPOETRY_TEST_B=beta\nPOETRY_TEST_C=x=y\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loaded, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.True(t, loaded)

	assert.Equal(t, "alpha", os.Getenv("POETRY_TEST_A"))
	assert.Equal(t, "beta", os.Getenv("POETRY_TEST_B"), "file values override existing ones")
	assert.Equal(t, "x=y", os.Getenv("POETRY_TEST_C"), "split on the first '=' only")
}

func TestLoadEnvFileSkipsLinesWithoutEquals(t *testing.T) {
	t.Setenv("POETRY_TEST_A", "")
	t.Setenv("POETRY_TEST_B", "")

	path := filepath.Join(t.TempDir(), ".env")
	content := "POETRY_TEST_A=1\nthis line has no equals\n=orphan\nPOETRY_TEST_B=2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loaded, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.True(t, loaded)

	assert.Equal(t, "1", os.Getenv("POETRY_TEST_A"))
	assert.Equal(t, "2", os.Getenv("POETRY_TEST_B"))
}

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		key    string
		value  string
		wantOK bool
	}{
		{"plain", "SUPABASE_URL=https://x.supabase.co", "SUPABASE_URL", "https://x.supabase.co", true},
		{"trimmed", "  SUPABASE_KEY = secret  ", "SUPABASE_KEY", "secret", true},
		{"first equals", "TOKEN=a=b=c", "TOKEN", "a=b=c", true},
		{"quoted", `NAME="唐 宋"`, "NAME", "唐 宋", true},
		{"comment", "# SUPABASE_URL=x", "", "", false},
		{"blank", "   ", "", "", false},
		{"no equals", "just words", "", "", false},
		{"empty key", "=value", "", "", false},
		{"invalid key characters", "KEY-NAME=1", "KEY-NAME", "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, ok := parseEnvLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	loaded, err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.False(t, loaded)
}
