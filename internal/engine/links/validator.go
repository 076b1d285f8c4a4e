package links

import (
	"net/url"
	"regexp"
	"strings"
)

var shortcodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,20}$`)

// reservedShortcodes are root paths served by the API itself; a link under
// one of them would never redirect.
var reservedShortcodes = []string{"api", "healthz", "metrics"}

func IsReservedShortcode(code string) bool {
	for _, r := range reservedShortcodes {
		if strings.EqualFold(code, r) {
			return true
		}
	}
	return false
}

func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &ValidationError{Field: "original_url", Message: "URL is required"}
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		return &ValidationError{Field: "original_url", Message: "Invalid URL format"}
	}

	return nil
}

func ValidateShortcode(code string) error {
	if !shortcodePattern.MatchString(code) {
		return &ValidationError{Field: "preferred_code", Message: "Invalid shortcode format (alphanumeric, max 20 chars)"}
	}
	if IsReservedShortcode(code) {
		return &ValidationError{Field: "preferred_code", Message: "Shortcode is reserved"}
	}
	return nil
}

func ValidateValidity(minutes int) error {
	if minutes < MinValidityMinutes || minutes > MaxValidityMinutes {
		return &ValidationError{Field: "validity_minutes", Message: "Validity must be between 1 and 525600 minutes"}
	}
	return nil
}

// ValidateCandidate reports the first offending field, checking the URL,
// then the preferred code, then the validity.
func ValidateCandidate(c Candidate) error {
	if err := ValidateURL(c.OriginalURL); err != nil {
		return err
	}
	if c.PreferredCode != "" {
		if err := ValidateShortcode(c.PreferredCode); err != nil {
			return err
		}
	}
	return ValidateValidity(c.ValidityMinutes)
}
