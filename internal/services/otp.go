package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/biashadrive/biashadrive-backend/internal/storage"
	"github.com/biashadrive/biashadrive-backend/internal/utils"
)

const (
	otpExpiry       = 10 * time.Minute
	rateLimitMax    = 5
	rateLimitWindow = time.Hour
)

// OTPService issues and verifies one-time codes keyed by phone number
type OTPService struct {
	store      storage.Store
	dispatcher *Dispatcher
	devMode    bool

	now func() time.Time
}

// NewOTPService creates a new OTP service. In devMode the code is returned
// to the caller instead of being dispatched.
func NewOTPService(store storage.Store, dispatcher *Dispatcher, devMode bool) *OTPService {
	return &OTPService{
		store:      store,
		dispatcher: dispatcher,
		devMode:    devMode,
		now:        time.Now,
	}
}

// IssueResult reports how a requested code was delivered
type IssueResult struct {
	// Method is the channel that delivered the code ("sms" or "whatsapp")
	Method string
	// DevCode carries the live code in development mode only
	DevCode string
}

// RequestCode validates the phone, enforces the hourly cap and issues a
// fresh 6-digit code. Any previous unexpired code for the phone is replaced.
func (s *OTPService) RequestCode(ctx context.Context, phone string) (*IssueResult, error) {
	if !utils.IsValidPhone(phone) {
		return nil, ErrInvalidPhone
	}

	allowed, err := s.store.ReserveOTPSlot(phone, rateLimitMax, rateLimitWindow)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.store.UpsertOTP(phone, code, s.now().Add(otpExpiry)); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}

	if s.devMode {
		log.Printf("🔑 OTP for %s: %s (development mode, not dispatched)", phone, code)
		return &IssueResult{DevCode: code}, nil
	}

	method, err := s.dispatcher.SendVerificationCode(ctx, phone, code)
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch code: %w", err)
	}

	return &IssueResult{Method: method}, nil
}

// VerifyCode checks the submitted code against the live record. A matching
// code is consumed; a mismatched one is retained until it expires.
func (s *OTPService) VerifyCode(phone, code string) error {
	if !utils.IsValidPhone(phone) {
		return ErrInvalidPhone
	}
	if !utils.IsValidOTPCode(code) {
		return ErrInvalidCode
	}

	rec, err := s.store.GetOTP(phone)
	if err != nil {
		if err == storage.ErrOTPNotFound {
			return ErrOTPNotFound
		}
		return err
	}

	if s.now().After(rec.ExpiresAt) {
		// Stale record is removed so a later attempt reads "not found"
		_ = s.store.DeleteOTP(phone)
		return ErrOTPExpired
	}

	if rec.Code != code {
		return ErrOTPMismatch
	}

	// Consume the code so it verifies exactly once
	if err := s.store.DeleteOTP(phone); err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}
	return nil
}
