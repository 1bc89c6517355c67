package models

import (
	"time"

	"gorm.io/gorm"
)

// OtpCode is the single live verification code for a phone number.
// A new request overwrites any previous code; verification deletes the row.
type OtpCode struct {
	gorm.Model
	Phone     string    `gorm:"uniqueIndex;not null"`
	Code      string    `gorm:"not null"` // exactly 6 decimal digits
	ExpiresAt time.Time `gorm:"not null"`
}

// OtpRateLimit caps issuance per phone. The window is anchored at the first
// request and resets 60 minutes later, not on a fixed clock boundary.
type OtpRateLimit struct {
	gorm.Model
	Phone   string    `gorm:"uniqueIndex;not null"`
	Count   int       `gorm:"default:0"`
	ResetAt time.Time `gorm:"not null"`
}
