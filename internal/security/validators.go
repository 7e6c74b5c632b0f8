package security

import (
	"fmt"
	"regexp"
	"strings"
)

// Input length constraints
const (
	MaxRoomIDLength   = 64
	MaxUsernameLength = 50
	MinNameLength     = 1
)

var (
	// Room ids are caller-generated opaque tokens (uuid-style or hand-typed
	// slugs); only url-safe characters are accepted.
	roomIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// Name validation regex - Unicode letters, digits, spaces, apostrophes, hyphens, underscores, dots
	// \p{L} matches any Unicode letter (includes accented characters)
	// \p{N} matches any Unicode number
	nameRegex = regexp.MustCompile(`^[\p{L}\p{N}\s'\-_.]+$`)
	// Dangerous characters that could be used for injection attacks
	dangerousCharsRegex = regexp.MustCompile(`[<>{}[\]\\;|&$()` + "`" + `]`)
)

// ValidateRoomID validates a room identifier.
// Returns the id unchanged and an error if validation fails.
func ValidateRoomID(id string) (string, error) {
	id = strings.TrimSpace(id)

	if id == "" {
		return "", fmt.Errorf("room id cannot be empty")
	}

	if len(id) > MaxRoomIDLength {
		return "", fmt.Errorf("room id too long (max %d characters)", MaxRoomIDLength)
	}

	if !roomIDRegex.MatchString(id) {
		return "", fmt.Errorf("room id contains invalid characters (allowed: letters, numbers, hyphens, underscores)")
	}

	return id, nil
}

// ValidateUsername validates a display name with length and character
// constraints. Returns the sanitized name and an error if validation fails.
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	if len(name) < MinNameLength {
		return "", fmt.Errorf("name too short (min %d characters)", MinNameLength)
	}

	if len(name) > MaxUsernameLength {
		return "", fmt.Errorf("name too long (max %d characters)", MaxUsernameLength)
	}

	if !nameRegex.MatchString(name) {
		return "", fmt.Errorf("name contains invalid characters (allowed: letters, numbers, spaces, apostrophes, hyphens, underscores, dots)")
	}

	if dangerousCharsRegex.MatchString(name) {
		return "", fmt.Errorf("name contains potentially dangerous characters")
	}

	for _, r := range name {
		if r < 32 || r == 127 {
			return "", fmt.Errorf("name contains control characters")
		}
	}

	return name, nil
}
