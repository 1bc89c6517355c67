package storage

import "errors"

// Sentinel errors shared by every Store implementation so handlers and
// services can branch without string matching.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrOTPNotFound         = errors.New("otp not found")
	ErrExpertNotFound      = errors.New("expert not found")
	ErrPlaybookNotFound    = errors.New("playbook not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBookingNotFound     = errors.New("booking not found")
)
