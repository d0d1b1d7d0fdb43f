package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxPasswordLength = 128
	MinPasswordLength = 6
	MaxEmailLength    = 255
	MaxIDLength       = 128
	MaxNameLength     = 256
	MaxFilenameLength = 255
	MaxCommandLength  = 1024
	MaxNoteLength     = 1024 * 1024
)

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// EmailPattern is a basic email validation
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// unsafeFilenameChars matches anything not allowed in a storage path segment
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidatePassword validates a password
func ValidatePassword(password string) error {
	return ValidateString(password, "password", MinPasswordLength, MaxPasswordLength, true)
}

// ValidateEmail validates an email address
func ValidateEmail(email string, required bool) error {
	if err := ValidateString(email, "email", 0, MaxEmailLength, required); err != nil {
		return err
	}

	if email != "" && !EmailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidateName validates a name field
func ValidateName(name, fieldName string) error {
	return ValidateString(name, fieldName, 1, MaxNameLength, true)
}

// ValidateCommand validates one terminal input line
func ValidateCommand(line string) error {
	return ValidateString(line, "command", 0, MaxCommandLength, false)
}

// SanitizeFilename replaces every character outside [a-zA-Z0-9._-] with '_'
// so the name can be embedded in a storage path.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	if utf8.RuneCountInString(name) > MaxFilenameLength {
		name = string([]rune(name)[:MaxFilenameLength])
	}
	clean := unsafeFilenameChars.ReplaceAllString(name, "_")
	if strings.Trim(clean, ".") == "" {
		return "file"
	}
	return clean
}
