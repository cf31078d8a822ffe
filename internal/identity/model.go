package identity

import (
	"errors"
	"time"
)

// Validation and flow errors. Their text is shown to the user as is.
var (
	ErrRequiredFields   = errors.New("Please fill in all required fields")
	ErrInvalidAadhaar   = errors.New("Please enter a valid 12-digit Aadhaar number")
	ErrInvalidOTP       = errors.New("Please enter a valid 6-digit OTP")
	ErrOTPNotSent       = errors.New("Please request an OTP for your Aadhaar number first")
	ErrMaxOTPAttempts   = errors.New("Maximum OTP attempts reached. Please try again after some time.")
	ErrOTPSendFailed    = errors.New("Failed to send OTP. Please try again.")
	ErrInvalidLogin     = errors.New("Invalid login credentials")
	ErrTooManyLogins    = errors.New("Too many login attempts. Please try again later.")
	ErrEmailTaken       = errors.New("User already registered")
	ErrWeakPassword     = errors.New("Password should be at least 6 characters")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidAccessKey = errors.New("invalid access token")
)

// OTPSentMessage confirms a simulated OTP dispatch.
const OTPSentMessage = "OTP sent successfully! Please check your registered mobile number."

// Mode selects the auth screen variant.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// ParseMode maps a query value to a Mode, defaulting to login.
func ParseMode(s string) Mode {
	if Mode(s) == ModeSignup {
		return ModeSignup
	}
	return ModeLogin
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeSignup {
		return ModeLogin
	}
	return ModeSignup
}

// User is an authenticated identity.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Tokens are the credentials issued by the authenticator for a sign-in.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Credentials request structure.
type Credentials struct {
	Email    string
	Password string
}
