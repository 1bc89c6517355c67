package storage

import (
	"time"

	"github.com/biashadrive/biashadrive-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUserByID(userID string) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	UpdateUser(user *models.User) error

	// OTP operations
	// ReserveOTPSlot performs the rate-limit check and increment as a single
	// conditional operation. It returns false when the phone has exhausted
	// its issuance budget for the current window.
	ReserveOTPSlot(phone string, limit int, window time.Duration) (bool, error)
	UpsertOTP(phone, code string, expiresAt time.Time) error
	GetOTP(phone string) (*models.OtpCode, error)
	DeleteOTP(phone string) error
	DeleteExpiredOTPs() error

	// Expert operations
	CreateExpert(expert *models.Expert) (*models.Expert, error)
	GetExpertByID(expertID string) (*models.Expert, error)
	GetExpertByEmail(email string) (*models.Expert, error)
	ListAvailableExperts(domain string) ([]*models.Expert, error)

	// Playbook operations
	CreatePlaybook(playbook *models.Playbook) (*models.Playbook, error)
	GetPlaybook(playbookID string) (*models.Playbook, error)
	ListPlaybooks(domain string, publishedOnly bool) ([]*models.Playbook, error)
	UpdatePlaybook(playbook *models.Playbook) error
	DeletePlaybook(playbookID string) error
	IncrementPlaybookViews(playbookID string) error
	IncrementPlaybookDownloads(playbookID string) error

	// Diagnostic operations
	CreateDiagnostic(diagnostic *models.Diagnostic) (*models.Diagnostic, error)
	GetDiagnosticsByUser(userID string) ([]*models.Diagnostic, error)
	ListDiagnostics() ([]*models.Diagnostic, error)

	// Transaction operations
	CreateTransaction(txn *models.Transaction) (*models.Transaction, error)
	GetTransaction(transactionID string) (*models.Transaction, error)
	GetTransactionByCheckoutRequestID(checkoutRequestID string) (*models.Transaction, error)
	SetTransactionCheckoutRequest(transactionID, checkoutRequestID, merchantRequestID string) error
	// CompleteTransaction and FailTransaction apply the terminal status as a
	// guarded pending-only transition. The bool result reports whether the
	// update was applied; a redelivered callback loses the race and gets false.
	CompleteTransaction(checkoutRequestID, receiptNumber, metadata string) (*models.Transaction, bool, error)
	FailTransaction(checkoutRequestID, metadata string) (*models.Transaction, bool, error)
	ListTransactions() ([]*models.Transaction, error)
	GetStalePendingTransactions(olderThan time.Duration) ([]*models.Transaction, error)

	// Booking operations
	CreateBooking(booking *models.Booking) (*models.Booking, error)
	GetBooking(bookingID string) (*models.Booking, error)
	GetBookingByTransaction(transactionID string) (*models.Booking, error)
	UpdateBookingStatus(bookingID, status string) error
}
