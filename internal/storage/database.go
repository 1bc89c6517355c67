package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/biashadrive/biashadrive-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// ===== User operations =====

func (s *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DatabaseStore) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := s.db.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	err := s.db.Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) UpdateUser(user *models.User) error {
	return s.db.Save(user).Error
}

// ===== OTP operations =====

// errOTPSlotRace signals that a concurrent request created the rate-limit
// row first; the reservation is retried against the now-existing row.
var errOTPSlotRace = errors.New("concurrent rate limit insert")

// ReserveOTPSlot increments the per-phone issuance counter inside one DB
// transaction with the row locked, so concurrent requests cannot slip past
// the cap between check and increment.
func (s *DatabaseStore) ReserveOTPSlot(phone string, limit int, window time.Duration) (bool, error) {
	allowed, err := s.reserveOTPSlot(phone, limit, window)
	if errors.Is(err, errOTPSlotRace) {
		allowed, err = s.reserveOTPSlot(phone, limit, window)
	}
	return allowed, err
}

func (s *DatabaseStore) reserveOTPSlot(phone string, limit int, window time.Duration) (bool, error) {
	allowed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var rl models.OtpRateLimit
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("phone = ?", phone).First(&rl).Error

		now := time.Now()
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rl = models.OtpRateLimit{Phone: phone, Count: 1, ResetAt: now.Add(window)}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rl)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Another request inserted the row between our lookup and
				// the create; take the locked path against the existing row
				return errOTPSlotRace
			}
			allowed = true
			return nil
		case err != nil:
			return err
		}

		if now.After(rl.ResetAt) {
			// Window elapsed: start a fresh one anchored at this request
			rl.Count = 1
			rl.ResetAt = now.Add(window)
			allowed = true
			return tx.Save(&rl).Error
		}

		if rl.Count >= limit {
			return nil
		}

		rl.Count++
		allowed = true
		return tx.Save(&rl).Error
	})
	return allowed, err
}

func (s *DatabaseStore) UpsertOTP(phone, code string, expiresAt time.Time) error {
	otp := models.OtpCode{Phone: phone, Code: code, ExpiresAt: expiresAt}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "updated_at"}),
	}).Create(&otp).Error
}

func (s *DatabaseStore) GetOTP(phone string) (*models.OtpCode, error) {
	var otp models.OtpCode
	err := s.db.Where("phone = ?", phone).First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (s *DatabaseStore) DeleteOTP(phone string) error {
	return s.db.Unscoped().Where("phone = ?", phone).Delete(&models.OtpCode{}).Error
}

func (s *DatabaseStore) DeleteExpiredOTPs() error {
	return s.db.Unscoped().Where("expires_at < ?", time.Now()).Delete(&models.OtpCode{}).Error
}

// ===== Expert operations =====

func (s *DatabaseStore) CreateExpert(expert *models.Expert) (*models.Expert, error) {
	if err := s.db.Create(expert).Error; err != nil {
		return nil, err
	}
	return expert, nil
}

func (s *DatabaseStore) GetExpertByID(expertID string) (*models.Expert, error) {
	var expert models.Expert
	err := s.db.Where("expert_id = ?", expertID).First(&expert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpertNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expert, nil
}

func (s *DatabaseStore) GetExpertByEmail(email string) (*models.Expert, error) {
	var expert models.Expert
	err := s.db.Where("email = ?", email).First(&expert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpertNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expert, nil
}

func (s *DatabaseStore) ListAvailableExperts(domain string) ([]*models.Expert, error) {
	query := s.db.Where("verified = ? AND available = ?", true, true)
	if domain != "" {
		query = query.Where("domains LIKE ?", "%"+domain+"%")
	}

	var experts []*models.Expert
	if err := query.Order("rating DESC").Find(&experts).Error; err != nil {
		return nil, err
	}
	return experts, nil
}

// ===== Playbook operations =====

func (s *DatabaseStore) CreatePlaybook(playbook *models.Playbook) (*models.Playbook, error) {
	if err := s.db.Create(playbook).Error; err != nil {
		return nil, err
	}
	return playbook, nil
}

func (s *DatabaseStore) GetPlaybook(playbookID string) (*models.Playbook, error) {
	var playbook models.Playbook
	err := s.db.Where("playbook_id = ?", playbookID).First(&playbook).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlaybookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &playbook, nil
}

func (s *DatabaseStore) ListPlaybooks(domain string, publishedOnly bool) ([]*models.Playbook, error) {
	query := s.db.Order("created_at DESC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if domain != "" {
		query = query.Where("domain = ?", domain)
	}

	var playbooks []*models.Playbook
	if err := query.Find(&playbooks).Error; err != nil {
		return nil, err
	}
	return playbooks, nil
}

func (s *DatabaseStore) UpdatePlaybook(playbook *models.Playbook) error {
	return s.db.Save(playbook).Error
}

func (s *DatabaseStore) DeletePlaybook(playbookID string) error {
	result := s.db.Unscoped().Where("playbook_id = ?", playbookID).Delete(&models.Playbook{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlaybookNotFound
	}
	return nil
}

func (s *DatabaseStore) IncrementPlaybookViews(playbookID string) error {
	return s.db.Model(&models.Playbook{}).
		Where("playbook_id = ?", playbookID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (s *DatabaseStore) IncrementPlaybookDownloads(playbookID string) error {
	return s.db.Model(&models.Playbook{}).
		Where("playbook_id = ?", playbookID).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
}

// ===== Diagnostic operations =====

func (s *DatabaseStore) CreateDiagnostic(diagnostic *models.Diagnostic) (*models.Diagnostic, error) {
	if err := s.db.Create(diagnostic).Error; err != nil {
		return nil, err
	}
	return diagnostic, nil
}

func (s *DatabaseStore) GetDiagnosticsByUser(userID string) ([]*models.Diagnostic, error) {
	var diagnostics []*models.Diagnostic
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&diagnostics).Error
	if err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func (s *DatabaseStore) ListDiagnostics() ([]*models.Diagnostic, error) {
	var diagnostics []*models.Diagnostic
	if err := s.db.Order("created_at DESC").Find(&diagnostics).Error; err != nil {
		return nil, err
	}
	return diagnostics, nil
}

// ===== Transaction operations =====

func (s *DatabaseStore) CreateTransaction(txn *models.Transaction) (*models.Transaction, error) {
	if err := s.db.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *DatabaseStore) GetTransaction(transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Where("transaction_id = ?", transactionID).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *DatabaseStore) GetTransactionByCheckoutRequestID(checkoutRequestID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Where("checkout_request_id = ?", checkoutRequestID).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *DatabaseStore) SetTransactionCheckoutRequest(transactionID, checkoutRequestID, merchantRequestID string) error {
	result := s.db.Model(&models.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Updates(map[string]interface{}{
			"checkout_request_id": checkoutRequestID,
			"merchant_request_id": merchantRequestID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (s *DatabaseStore) CompleteTransaction(checkoutRequestID, receiptNumber, metadata string) (*models.Transaction, bool, error) {
	return s.finishTransaction(checkoutRequestID, map[string]interface{}{
		"status":               models.TransactionStatusCompleted,
		"mpesa_receipt_number": receiptNumber,
		"metadata":             metadata,
	})
}

func (s *DatabaseStore) FailTransaction(checkoutRequestID, metadata string) (*models.Transaction, bool, error) {
	return s.finishTransaction(checkoutRequestID, map[string]interface{}{
		"status":   models.TransactionStatusFailed,
		"metadata": metadata,
	})
}

// finishTransaction applies a terminal status with a pending-only guard.
// The WHERE clause makes the transition a compare-and-set: a second callback
// for the same checkout request matches zero rows and changes nothing.
func (s *DatabaseStore) finishTransaction(checkoutRequestID string, updates map[string]interface{}) (*models.Transaction, bool, error) {
	result := s.db.Model(&models.Transaction{}).
		Where("checkout_request_id = ? AND status = ?", checkoutRequestID, models.TransactionStatusPending).
		Updates(updates)
	if result.Error != nil {
		return nil, false, result.Error
	}

	txn, err := s.GetTransactionByCheckoutRequestID(checkoutRequestID)
	if err != nil {
		return nil, false, err
	}
	return txn, result.RowsAffected > 0, nil
}

func (s *DatabaseStore) ListTransactions() ([]*models.Transaction, error) {
	var txns []*models.Transaction
	if err := s.db.Order("created_at DESC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *DatabaseStore) GetStalePendingTransactions(olderThan time.Duration) ([]*models.Transaction, error) {
	cutoff := time.Now().Add(-olderThan)
	var txns []*models.Transaction
	err := s.db.Where("status = ? AND created_at < ?", models.TransactionStatusPending, cutoff).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// ===== Booking operations =====

func (s *DatabaseStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	if err := s.db.Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *DatabaseStore) GetBooking(bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Where("booking_id = ?", bookingID).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *DatabaseStore) GetBookingByTransaction(transactionID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Where("transaction_id = ?", transactionID).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *DatabaseStore) UpdateBookingStatus(bookingID, status string) error {
	result := s.db.Model(&models.Booking{}).
		Where("booking_id = ?", bookingID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}
