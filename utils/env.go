package utils

import (
	"os"
	"strings"
)

// EnvOrDefault returns the env value or a fallback default. Blank and
// whitespace-only values count as unset.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
