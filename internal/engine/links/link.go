package links

import (
	"errors"
	"fmt"
	"time"
)

const (
	// UnknownLocation stands in for a click whose geolocation lookup failed.
	UnknownLocation = "Unknown Location"

	MinValidityMinutes = 1
	MaxValidityMinutes = 525600 // one year
)

var (
	ErrCodeExists         = errors.New("shortcode already exists")
	ErrExhaustedCodeSpace = errors.New("failed to generate unique shortcode")
	ErrNotFound           = errors.New("link not found")
)

// LinkRecord pairs a shortcode with its original URL and click history.
// Only Clicks ever changes after creation, and only by appending.
type LinkRecord struct {
	Shortcode       string       `json:"shortcode"`
	OriginalURL     string       `json:"original_url"`
	ShortURL        string       `json:"short_url"`
	CreatedAt       time.Time    `json:"created_at"`
	ExpiryDate      time.Time    `json:"expiry_date"`
	ValidityMinutes int          `json:"validity_minutes"`
	Clicks          []ClickEvent `json:"clicks"`
}

// IsExpired is informational; expired links are never evicted.
func (l *LinkRecord) IsExpired(now time.Time) bool {
	return now.After(l.ExpiryDate)
}

type ClickEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`   // user agent
	Location  string    `json:"location"` // "<city>, <region>, <country>" or UnknownLocation
}

// Candidate is one submission for shortening.
type Candidate struct {
	OriginalURL     string `json:"original_url"`
	ValidityMinutes int    `json:"validity_minutes"`
	PreferredCode   string `json:"preferred_code,omitempty"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
