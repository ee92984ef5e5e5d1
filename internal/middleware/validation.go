package middleware

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MinUsernameLen    = 3
	MaxUsernameLen    = 32 // users.username VARCHAR(32)
	MinPasswordLen    = 8
	MaxPasswordLen    = 72 // bcrypt input limit
	MaxCategoryLen    = 64 // videos.skill_category VARCHAR(64)
	MaxDescriptionLen = 500
)

var (
	// usernameRe matches usernames: alphanumeric, dash, underscore.
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// uuidRe matches canonical lowercase-or-uppercase UUIDs (entity IDs).
	uuidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateUsername checks that a username is well-formed and within DB limits.
func ValidateUsername(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "username is required"
	}
	if len(name) < MinUsernameLen {
		return "", "username must be at least 3 characters"
	}
	if len(name) > MaxUsernameLen {
		return "", "username must be at most 32 characters"
	}
	if !usernameRe.MatchString(name) {
		return "", "username may only contain letters, digits, dash, and underscore"
	}
	return name, ""
}

// ValidatePassword checks password length bounds. Content is unrestricted.
func ValidatePassword(pw string) string {
	if pw == "" {
		return "password is required"
	}
	if len(pw) < MinPasswordLen {
		return "password must be at least 8 characters"
	}
	if len(pw) > MaxPasswordLen {
		return "password must be at most 72 characters"
	}
	return ""
}

// ValidateVideoID checks that a video ID is a well-formed UUID.
func ValidateVideoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "videoId is required"
	}
	if !uuidRe.MatchString(id) {
		return "", "videoId must be a UUID"
	}
	return strings.ToLower(id), ""
}

// ValidateCategory trims and bounds the skill category tag.
func ValidateCategory(cat string) (string, string) {
	cat = strings.TrimSpace(cat)
	if cat == "" {
		return "", "skillCategory is required"
	}
	if len(cat) > MaxCategoryLen {
		return "", "skillCategory must be at most 64 characters"
	}
	return cat, ""
}

// ValidateDescription trims and truncates the optional description. The cut
// lands on a rune boundary so a multi-byte character is never split.
func ValidateDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if len(desc) > MaxDescriptionLen {
		cut := MaxDescriptionLen
		for cut > 0 && !utf8.RuneStart(desc[cut]) {
			cut--
		}
		desc = desc[:cut]
	}
	return desc
}
