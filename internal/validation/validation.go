package validation

import (
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// SlugPattern defines the public page slug format: lowercase letters, digits and hyphens.
var SlugPattern = regexp.MustCompile(`^[a-z0-9-]{3,20}$`)

// ThemeColorPattern is a six digit hex color.
var ThemeColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const (
	MinSlugLength  = 3
	MaxSlugLength  = 20
	MaxTitleLength = 100
	MinNameLength  = 2
	MaxBioLength   = 500
)

// ReservedSlugs cannot be claimed because they collide with application routes.
var ReservedSlugs = []string{
	"api", "auth", "click", "dashboard", "healthz", "login", "logout", "metrics", "profile", "readyz", "static",
}

// ValidateSlug checks if a slug matches the allowed pattern and is not reserved.
func ValidateSlug(slug string, reserved []string) (bool, string) {
	if !SlugPattern.MatchString(slug) {
		return false, "Slug must be 3-20 characters of lowercase letters, numbers and hyphens"
	}
	if slices.Contains(ReservedSlugs, slug) || slices.Contains(reserved, slug) {
		return false, "This slug is reserved"
	}
	return true, ""
}

// NormalizeSlug lowercases and trims a slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// SlugFromName derives a slug candidate from free text such as a name or an
// email local part. The result may still be reserved or taken.
func SlugFromName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	for len(slug) < MinSlugLength {
		slug += "0"
	}
	return slug
}

// ValidateTitle checks a link title is between 1 and 100 characters.
func ValidateTitle(title string) (bool, string) {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n == 0 {
		return false, "Title is required"
	}
	if n > MaxTitleLength {
		return false, "Title must be at most 100 characters"
	}
	return true, ""
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateThemeColor checks a #RRGGBB color.
func ValidateThemeColor(color string) bool {
	return ThemeColorPattern.MatchString(color)
}

// ValidateName checks a display name has at least two characters.
func ValidateName(name string) (bool, string) {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLength {
		return false, "Name must be at least 2 characters"
	}
	return true, ""
}

// ValidateBio checks a bio is at most 500 characters.
func ValidateBio(bio string) (bool, string) {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return false, "Bio must be at most 500 characters"
	}
	return true, ""
}
