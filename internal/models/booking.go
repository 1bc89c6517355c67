package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking links a user and an expert; always references exactly one Transaction
type Booking struct {
	gorm.Model `json:"-"`

	BookingID     string  `json:"id" gorm:"uniqueIndex"`
	UserID        string  `json:"userId" gorm:"index;not null"`
	ExpertID      string  `json:"expertId" gorm:"index;not null"`
	Service       string  `json:"service"`
	Message       string  `json:"message"`
	Amount        float64 `json:"amount"` // KES
	TransactionID string  `json:"transactionId" gorm:"uniqueIndex;not null"`
	Status        string  `json:"status" gorm:"default:pending"` // "pending", "confirmed", "failed"
}

// Booking status constants
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusFailed    = "failed"
)

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.BookingID == "" {
		b.BookingID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}
