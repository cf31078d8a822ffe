package identity

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	AadhaarLength = 12
	OTPLength     = 6
)

var (
	aadhaarPattern = regexp.MustCompile(`^\d{12}$`)
	otpPattern     = regexp.MustCompile(`^\d{6}$`)
)

// SanitizeDigits strips every non-digit from input. When the result is
// longer than max the input is rejected and current is returned unchanged.
func SanitizeDigits(current, input string, max int) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, input)
	if len(digits) > max {
		return current
	}
	return digits
}

// ValidAadhaar reports whether s is exactly twelve ASCII digits.
func ValidAadhaar(s string) bool { return aadhaarPattern.MatchString(s) }

// ValidOTP reports whether s is exactly six ASCII digits.
func ValidOTP(s string) bool { return otpPattern.MatchString(s) }

// SignupForm is the signup screen state for one form lifetime.
type SignupForm struct {
	Email    string
	Password string
	FullName string
	Aadhaar  string
	OTP      string

	OTPSent  bool
	Attempts int
}

// SetAadhaar applies an edit to the Aadhaar field. A change of number hides
// the OTP input, clears the OTP and restarts the attempt counter.
func (f *SignupForm) SetAadhaar(input string) {
	next := SanitizeDigits(f.Aadhaar, input, AadhaarLength)
	if next == f.Aadhaar {
		return
	}
	f.Aadhaar = next
	f.OTPSent = false
	f.OTP = ""
	f.Attempts = 0
}

// SetOTP applies an edit to the OTP field.
func (f *SignupForm) SetOTP(input string) {
	f.OTP = SanitizeDigits(f.OTP, input, OTPLength)
}

// CanSendOTP reports whether the Send OTP control is enabled.
func (f SignupForm) CanSendOTP() bool { return ValidAadhaar(f.Aadhaar) }

// CanResend reports whether another OTP may be requested.
func (f SignupForm) CanResend(max int) bool { return f.Attempts < max }

// RemainingAttempts is the number of OTP requests left in this form lifetime.
func (f SignupForm) RemainingAttempts(max int) int {
	if f.Attempts >= max {
		return 0
	}
	return max - f.Attempts
}

// CanSubmit reports whether the signup submit control is enabled.
func (f SignupForm) CanSubmit() bool { return f.OTPSent && ValidOTP(f.OTP) }

// Validate checks the form before any remote call.
func (f SignupForm) Validate() error {
	if isBlank(f.Email) || f.Password == "" || isBlank(f.FullName) || f.Aadhaar == "" {
		return ErrRequiredFields
	}
	if !ValidAadhaar(f.Aadhaar) {
		return ErrInvalidAadhaar
	}
	if !f.OTPSent {
		return ErrOTPNotSent
	}
	if !ValidOTP(f.OTP) {
		return ErrInvalidOTP
	}
	return nil
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
