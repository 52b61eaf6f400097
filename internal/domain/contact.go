package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DeviceType is the coarse device category derived from a user agent.
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
	DeviceUnknown DeviceType = "unknown"
)

// Valid reports whether d is one of the four known categories.
func (d DeviceType) Valid() bool {
	switch d {
	case DeviceMobile, DeviceTablet, DeviceDesktop, DeviceUnknown:
		return true
	}
	return false
}

// DefaultCountry is used whenever a country cannot be resolved.
const DefaultCountry = "IN"

// UnknownIP marks a client address that could not be derived from the request.
const UnknownIP = "unknown"

// ErrMissingField is wrapped with the field name when a required field is empty.
var ErrMissingField = errors.New("missing required field")

// ContactSubmission is what the visitor typed into the contact form.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company,omitempty"`
	Message string `json:"message,omitempty"`
}

// Validate checks the required fields.
func (s ContactSubmission) Validate() error {
	for _, f := range []struct{ name, val string }{
		{"name", s.Name},
		{"email", s.Email},
		{"phone", s.Phone},
	} {
		if strings.TrimSpace(f.val) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

// Location is the approximate place an IP address resolves to.
// Region and City are nil when unknown; Country is always set.
type Location struct {
	Region  *string `json:"region"`
	City    *string `json:"city"`
	Country string  `json:"country"`
}

// UnknownLocation is the degraded result of a failed lookup.
func UnknownLocation() Location {
	return Location{Country: DefaultCountry}
}

// ClientContext describes the submitter. Nil pointers are absent values and
// serialize as JSON null.
type ClientContext struct {
	DeviceType DeviceType `json:"device_type"`
	UserAgent  *string    `json:"user_agent"`
	IPAddress  *string    `json:"ip_address"`
	Region     *string    `json:"region"`
	City       *string    `json:"city"`
	Country    string     `json:"country"`
}

// EnrichedRecord is a submission plus its derived client context. It is built
// once per submission and never mutated afterwards.
type EnrichedRecord struct {
	ID string `json:"id"`
	ContactSubmission
	ClientContext
	CreatedAt time.Time `json:"created_at"`
}

// StringPtr returns nil for blank strings so that "" and absent are treated alike.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
