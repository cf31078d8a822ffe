package identity

import (
	"context"
	"errors"
	"time"
)

// OTPStatus is the outcome of an OTP request.
type OTPStatus struct {
	Sent      bool
	Attempts  int
	Remaining int
	Message   string
}

// OTPService simulates sending a one-time password for an Aadhaar number.
// Nothing is delivered and no code is generated; a send only waits the
// configured delay and records the attempt.
type OTPService struct {
	store       OTPStore
	delay       time.Duration
	maxAttempts int
}

// NewOTPService builds the OTP simulator.
func NewOTPService(store OTPStore, delay time.Duration, maxAttempts int) *OTPService {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &OTPService{store: store, delay: delay, maxAttempts: maxAttempts}
}

// MaxAttempts is the number of sends allowed per form before the Aadhaar
// number changes.
func (s *OTPService) MaxAttempts() int { return s.maxAttempts }

// Form returns the stored OTP progress for formID as last recorded.
func (s *OTPService) Form(ctx context.Context, formID string) (OTPState, error) {
	return s.store.Load(ctx, formID)
}

// State returns the stored OTP progress for formID as it applies to
// aadhaar. A different number than the one the OTP was sent for yields a
// fresh state.
func (s *OTPService) State(ctx context.Context, formID, aadhaar string) (OTPState, error) {
	state, err := s.store.Load(ctx, formID)
	if err != nil {
		return OTPState{}, err
	}
	if state.Aadhaar != aadhaar {
		return OTPState{Aadhaar: aadhaar}, nil
	}
	return state, nil
}

// Send validates the number, claims an attempt, waits the simulated latency
// and shows the OTP step. A failed wait gives the attempt back.
func (s *OTPService) Send(ctx context.Context, formID, aadhaar string) (OTPStatus, error) {
	if !ValidAadhaar(aadhaar) {
		return OTPStatus{}, ErrInvalidAadhaar
	}
	state, err := s.store.Reserve(ctx, formID, aadhaar, s.maxAttempts)
	if errors.Is(err, ErrMaxOTPAttempts) {
		return s.status(state), ErrMaxOTPAttempts
	}
	if err != nil {
		return OTPStatus{}, errors.Join(ErrOTPSendFailed, err)
	}

	if err := s.wait(ctx); err != nil {
		failure := errors.Join(ErrOTPSendFailed, err)
		if rerr := s.store.Release(context.WithoutCancel(ctx), formID, aadhaar); rerr != nil {
			failure = errors.Join(failure, rerr)
		}
		state.Attempts--
		return s.status(state), failure
	}

	if err := s.store.MarkSent(ctx, formID, aadhaar); err != nil {
		return s.status(state), errors.Join(ErrOTPSendFailed, err)
	}
	state.Sent = true
	status := s.status(state)
	status.Message = OTPSentMessage
	return status, nil
}

// Resend requests another OTP for the same number. The attempt limit
// applies exactly as for Send.
func (s *OTPService) Resend(ctx context.Context, formID, aadhaar string) (OTPStatus, error) {
	return s.Send(ctx, formID, aadhaar)
}

// Reset hides the OTP step for formID.
func (s *OTPService) Reset(ctx context.Context, formID string) error {
	return s.store.Reset(ctx, formID)
}

func (s *OTPService) status(state OTPState) OTPStatus {
	remaining := s.maxAttempts - state.Attempts
	if remaining < 0 {
		remaining = 0
	}
	return OTPStatus{Sent: state.Sent, Attempts: state.Attempts, Remaining: remaining}
}

func (s *OTPService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
