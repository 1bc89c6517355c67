package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction tracks one payment collection attempt.
// Status only ever moves pending -> completed or pending -> failed.
type Transaction struct {
	gorm.Model `json:"-"`

	TransactionID      string  `json:"id" gorm:"uniqueIndex"`
	UserID             string  `json:"userId" gorm:"index;not null"`
	Amount             float64 `json:"amount"` // KES
	Provider           string  `json:"provider" gorm:"default:mpesa"`
	Status             string  `json:"status" gorm:"default:pending"` // "pending", "completed", "failed"
	CheckoutRequestID  string  `json:"checkoutRequestId" gorm:"index"` // set once the STK push is accepted
	MerchantRequestID  string  `json:"merchantRequestId"`
	MpesaReceiptNumber string  `json:"mpesaReceiptNumber"`
	Metadata           string  `json:"-"` // JSON: gateway callback metadata or failure details
}

// Transaction status constants
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == "" {
		t.TransactionID = uuid.NewString()
	}
	if t.Provider == "" {
		t.Provider = "mpesa"
	}
	if t.Status == "" {
		t.Status = TransactionStatusPending
	}
	return nil
}
