package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateName validates a storage name (graph or random-state name) for safety.
// Names become file names and document keys, so the rules are conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "name cannot start with a dot")
	}

	return nil
}

// ValidateSampleFraction checks that a neighbor sample fraction lies in [0, 1].
func ValidateSampleFraction(f float64) error {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return New(ErrCodeInvalidInput, "sample fraction must be in [0, 1], got %v", f)
	}
	return nil
}

// ValidateStdevMultiplier checks that an outlier threshold multiplier is positive.
func ValidateStdevMultiplier(m float64) error {
	if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
		return New(ErrCodeInvalidInput, "stdev multiplier must be > 0, got %v", m)
	}
	return nil
}
