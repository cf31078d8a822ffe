package profile

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no profile row exists for a user.
var ErrNotFound = errors.New("profile not found")

// Profile is per-user metadata kept apart from credentials.
type Profile struct {
	ID              string    `json:"id"`
	FullName        string    `json:"full_name,omitempty"`
	AadhaarNumber   string    `json:"aadhaar_number,omitempty"`
	AadhaarVerified bool      `json:"aadhaar_verified"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// VerificationLabel is the sidebar status text.
func (p Profile) VerificationLabel() string {
	if p.AadhaarVerified {
		return "Verified User"
	}
	return "Unverified User"
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MaskedAadhaar hides all but the last four digits of the Aadhaar number.
func (p Profile) MaskedAadhaar() string {
	n := len(p.AadhaarNumber)
	if n <= 4 {
		return p.AadhaarNumber
	}
	return strings.Repeat("X", n-4) + p.AadhaarNumber[n-4:]
}
