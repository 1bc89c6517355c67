package services

import "errors"

var (
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrInvalidCode  = errors.New("invalid verification code")
	ErrRateLimited  = errors.New("too many code requests")
	ErrOTPNotFound  = errors.New("no verification code found")
	ErrOTPExpired   = errors.New("verification code expired")
	ErrOTPMismatch  = errors.New("verification code mismatch")
)
