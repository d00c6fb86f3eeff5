package driver

import (
	"errors"
	"path/filepath"
	"strings"
)

// MaxValueLength defines the maximum length of a single text value stored in the database
const MaxValueLength = 65536

// ErrInvalidPath is returned when a path is invalid or potentially dangerous
var ErrInvalidPath = errors.New("moviestat driver: invalid or dangerous path")

// ValidatePath checks a dump directory before anything is written to it.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}
	if strings.Contains(path, "\x00") {
		return ErrInvalidPath
	}

	cleanPath := filepath.ToSlash(filepath.Clean(path))
	for _, sysDir := range []string{"/etc", "/proc", "/sys", "/dev", "/boot"} {
		if cleanPath == sysDir || strings.HasPrefix(cleanPath, sysDir+"/") {
			return ErrInvalidPath
		}
	}
	return nil
}

// ValidateFieldValue truncates overlong values and removes null bytes.
func ValidateFieldValue(value string) string {
	if len(value) > MaxValueLength {
		value = value[:MaxValueLength]
	}
	return strings.ReplaceAll(value, "\x00", "")
}

// SanitizeForLog shortens a query before it is logged.
func SanitizeForLog(input string) string {
	const maxLogLength = 200
	result := strings.Join(strings.Fields(input), " ")
	if len(result) > maxLogLength {
		result = result[:maxLogLength] + "..."
	}
	return result
}
