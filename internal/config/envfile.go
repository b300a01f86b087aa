package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads key=value pairs from path into the process environment,
// overriding variables that are already set. A missing file is not an error.
// Blank lines, # comments and lines without '=' are skipped.
func LoadEnvFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open env file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return false, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return true, nil
}

// parseEnvLine splits one line on its first '='. godotenv handles quoting
// and export prefixes; a line it rejects keeps the raw trimmed value.
func parseEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	rawKey, rawValue, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	if parsed, err := godotenv.Unmarshal(line); err == nil && len(parsed) == 1 {
		for k, v := range parsed {
			if k != "" {
				return k, v, true
			}
		}
	}

	key = strings.TrimSpace(rawKey)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(rawValue), true
}
