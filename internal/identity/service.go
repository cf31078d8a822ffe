package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/schemes-portal/schemes_portal/internal/backend"
	"github.com/schemes-portal/schemes_portal/internal/profile"
)

// Service drives the sign-in and sign-up screen.
type Service struct {
	auth     Authenticator
	profiles profile.Repository
	otp      *OTPService
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new identity service.
func NewService(auth Authenticator, profiles profile.Repository, otp *OTPService, logger *slog.Logger) *Service {
	return &Service{auth: auth, profiles: profiles, otp: otp, logger: logger, now: time.Now}
}

// OTP exposes the OTP simulator used by the signup form.
func (s *Service) OTP() *OTPService { return s.otp }

// Authenticator exposes the credential backend, e.g. for sign-out.
func (s *Service) Authenticator() Authenticator { return s.auth }

// Login signs a user in with email and password. Failures are returned
// once; nothing is retried.
func (s *Service) Login(ctx context.Context, creds Credentials) (User, Tokens, error) {
	if isBlank(creds.Email) || creds.Password == "" {
		return User{}, Tokens{}, ErrRequiredFields
	}
	user, tokens, err := s.auth.SignIn(ctx, creds)
	if err != nil {
		s.logger.Info("login rejected", slog.String("email", normalizeEmail(creds.Email)), slog.Any("error", err))
		return User{}, Tokens{}, err
	}
	return user, tokens, nil
}

// Signup validates the form, registers the account and upserts its
// profile. All validation happens before the first remote call. When the
// account is created but the profile upsert fails the account is kept and
// the upsert error is returned.
func (s *Service) Signup(ctx context.Context, formID string, form SignupForm) (User, *Tokens, error) {
	if err := form.Validate(); err != nil {
		return User{}, nil, err
	}

	// The OTP value itself is not compared with anything; only a recorded
	// send for this number is required.
	state, err := s.otp.State(ctx, formID, form.Aadhaar)
	if err != nil {
		return User{}, nil, fmt.Errorf("load otp state: %w", err)
	}
	if !state.Sent {
		return User{}, nil, ErrOTPNotSent
	}

	user, tokens, err := s.auth.SignUp(ctx, Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		return User{}, nil, err
	}

	profileCtx := ctx
	if tokens != nil {
		profileCtx = backend.WithAccessToken(ctx, tokens.AccessToken)
	}
	p := profile.Profile{
		ID:              user.ID,
		FullName:        form.FullName,
		AadhaarNumber:   form.Aadhaar,
		AadhaarVerified: true,
		UpdatedAt:       s.now().UTC(),
	}
	if err := s.profiles.Upsert(profileCtx, p); err != nil {
		s.logger.Error("profile upsert failed after sign up",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return user, tokens, err
	}

	if err := s.otp.Reset(ctx, formID); err != nil {
		s.logger.Warn("otp form reset failed", slog.String("form_id", formID), slog.Any("error", err))
	}
	return user, tokens, nil
}

// UserMessage is the single human-readable message shown for err.
func UserMessage(err error) string {
	for _, known := range []error{
		ErrRequiredFields, ErrInvalidAadhaar, ErrInvalidOTP, ErrOTPNotSent,
		ErrMaxOTPAttempts, ErrOTPSendFailed, ErrInvalidLogin, ErrEmailTaken, ErrWeakPassword,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return backend.UserMessage(err)
}
