package storage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/biashadrive/biashadrive-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and local hacking;
// production always runs on the database store.
type MemoryStore struct {
	users        map[string]*models.User       // keyed by UserID
	otps         map[string]*models.OtpCode    // keyed by phone
	rateLimits   map[string]*models.OtpRateLimit
	experts      map[string]*models.Expert     // keyed by ExpertID
	playbooks    map[string]*models.Playbook   // keyed by PlaybookID
	diagnostics  map[string]*models.Diagnostic // keyed by DiagnosticID
	transactions map[string]*models.Transaction
	bookings     map[string]*models.Booking

	mu sync.RWMutex

	// Now is the store's clock; tests override it to move time
	Now func() time.Time
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*models.User),
		otps:         make(map[string]*models.OtpCode),
		rateLimits:   make(map[string]*models.OtpRateLimit),
		experts:      make(map[string]*models.Expert),
		playbooks:    make(map[string]*models.Playbook),
		diagnostics:  make(map[string]*models.Diagnostic),
		transactions: make(map[string]*models.Transaction),
		bookings:     make(map[string]*models.Booking),
		Now:          time.Now,
	}
}

// ===== User operations =====

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	if user.WhatsApp == "" {
		user.WhatsApp = user.Phone
	}
	if user.Language == "" {
		user.Language = "en"
	}
	user.CreatedAt = m.Now()
	user.UpdatedAt = user.CreatedAt

	m.users[user.UserID] = user
	return user, nil
}

func (m *MemoryStore) GetUserByID(userID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[userID]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Phone == phone {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryStore) UpdateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.UserID]; !exists {
		return ErrUserNotFound
	}
	user.UpdatedAt = m.Now()
	m.users[user.UserID] = user
	return nil
}

// ===== OTP operations =====

func (m *MemoryStore) ReserveOTPSlot(phone string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	rl, exists := m.rateLimits[phone]
	if !exists || now.After(rl.ResetAt) {
		m.rateLimits[phone] = &models.OtpRateLimit{
			Phone:   phone,
			Count:   1,
			ResetAt: now.Add(window),
		}
		return true, nil
	}

	if rl.Count >= limit {
		return false, nil
	}
	rl.Count++
	return true, nil
}

func (m *MemoryStore) UpsertOTP(phone, code string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.otps[phone] = &models.OtpCode{
		Phone:     phone,
		Code:      code,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (m *MemoryStore) GetOTP(phone string) (*models.OtpCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	otp, exists := m.otps[phone]
	if !exists {
		return nil, ErrOTPNotFound
	}
	return otp, nil
}

func (m *MemoryStore) DeleteOTP(phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.otps, phone)
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPs() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	for phone, otp := range m.otps {
		if now.After(otp.ExpiresAt) {
			delete(m.otps, phone)
		}
	}
	return nil
}

// ===== Expert operations =====

func (m *MemoryStore) CreateExpert(expert *models.Expert) (*models.Expert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expert.ExpertID == "" {
		expert.ExpertID = uuid.NewString()
	}
	expert.CreatedAt = m.Now()

	m.experts[expert.ExpertID] = expert
	return expert, nil
}

func (m *MemoryStore) GetExpertByID(expertID string) (*models.Expert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expert, exists := m.experts[expertID]
	if !exists {
		return nil, ErrExpertNotFound
	}
	return expert, nil
}

func (m *MemoryStore) GetExpertByEmail(email string) (*models.Expert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, expert := range m.experts {
		if strings.EqualFold(expert.Email, email) {
			return expert, nil
		}
	}
	return nil, ErrExpertNotFound
}

func (m *MemoryStore) ListAvailableExperts(domain string) ([]*models.Expert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var experts []*models.Expert
	for _, expert := range m.experts {
		if !expert.Verified || !expert.Available {
			continue
		}
		if domain != "" && !expert.HasDomain(domain) {
			continue
		}
		experts = append(experts, expert)
	}

	sort.Slice(experts, func(i, j int) bool {
		return experts[i].Rating > experts[j].Rating
	})
	return experts, nil
}

// ===== Playbook operations =====

func (m *MemoryStore) CreatePlaybook(playbook *models.Playbook) (*models.Playbook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if playbook.PlaybookID == "" {
		playbook.PlaybookID = uuid.NewString()
	}
	playbook.CreatedAt = m.Now()
	playbook.UpdatedAt = playbook.CreatedAt

	m.playbooks[playbook.PlaybookID] = playbook
	return playbook, nil
}

func (m *MemoryStore) GetPlaybook(playbookID string) (*models.Playbook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	playbook, exists := m.playbooks[playbookID]
	if !exists {
		return nil, ErrPlaybookNotFound
	}
	return playbook, nil
}

func (m *MemoryStore) ListPlaybooks(domain string, publishedOnly bool) ([]*models.Playbook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var playbooks []*models.Playbook
	for _, playbook := range m.playbooks {
		if publishedOnly && !playbook.Published {
			continue
		}
		if domain != "" && playbook.Domain != domain {
			continue
		}
		playbooks = append(playbooks, playbook)
	}

	sort.Slice(playbooks, func(i, j int) bool {
		return playbooks[i].CreatedAt.After(playbooks[j].CreatedAt)
	})
	return playbooks, nil
}

func (m *MemoryStore) UpdatePlaybook(playbook *models.Playbook) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.playbooks[playbook.PlaybookID]; !exists {
		return ErrPlaybookNotFound
	}
	playbook.UpdatedAt = m.Now()
	m.playbooks[playbook.PlaybookID] = playbook
	return nil
}

func (m *MemoryStore) DeletePlaybook(playbookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.playbooks[playbookID]; !exists {
		return ErrPlaybookNotFound
	}
	delete(m.playbooks, playbookID)
	return nil
}

func (m *MemoryStore) IncrementPlaybookViews(playbookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	playbook, exists := m.playbooks[playbookID]
	if !exists {
		return ErrPlaybookNotFound
	}
	playbook.Views++
	return nil
}

func (m *MemoryStore) IncrementPlaybookDownloads(playbookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	playbook, exists := m.playbooks[playbookID]
	if !exists {
		return ErrPlaybookNotFound
	}
	playbook.Downloads++
	return nil
}

// ===== Diagnostic operations =====

func (m *MemoryStore) CreateDiagnostic(diagnostic *models.Diagnostic) (*models.Diagnostic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if diagnostic.DiagnosticID == "" {
		diagnostic.DiagnosticID = uuid.NewString()
	}
	if diagnostic.Status == "" {
		diagnostic.Status = "completed"
	}
	diagnostic.CreatedAt = m.Now()

	m.diagnostics[diagnostic.DiagnosticID] = diagnostic
	return diagnostic, nil
}

func (m *MemoryStore) GetDiagnosticsByUser(userID string) ([]*models.Diagnostic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var diagnostics []*models.Diagnostic
	for _, d := range m.diagnostics {
		if d.UserID == userID {
			diagnostics = append(diagnostics, d)
		}
	}

	sort.Slice(diagnostics, func(i, j int) bool {
		return diagnostics[i].CreatedAt.After(diagnostics[j].CreatedAt)
	})
	return diagnostics, nil
}

func (m *MemoryStore) ListDiagnostics() ([]*models.Diagnostic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	diagnostics := make([]*models.Diagnostic, 0, len(m.diagnostics))
	for _, d := range m.diagnostics {
		diagnostics = append(diagnostics, d)
	}
	sort.Slice(diagnostics, func(i, j int) bool {
		return diagnostics[i].CreatedAt.After(diagnostics[j].CreatedAt)
	})
	return diagnostics, nil
}

// ===== Transaction operations =====

func (m *MemoryStore) CreateTransaction(txn *models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if txn.TransactionID == "" {
		txn.TransactionID = uuid.NewString()
	}
	if txn.Provider == "" {
		txn.Provider = "mpesa"
	}
	if txn.Status == "" {
		txn.Status = models.TransactionStatusPending
	}
	txn.CreatedAt = m.Now()

	m.transactions[txn.TransactionID] = txn
	return txn, nil
}

func (m *MemoryStore) GetTransaction(transactionID string) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txn, exists := m.transactions[transactionID]
	if !exists {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

func (m *MemoryStore) GetTransactionByCheckoutRequestID(checkoutRequestID string) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.findByCheckoutRequestID(checkoutRequestID)
}

// findByCheckoutRequestID requires the caller to hold the lock
func (m *MemoryStore) findByCheckoutRequestID(checkoutRequestID string) (*models.Transaction, error) {
	if checkoutRequestID == "" {
		return nil, ErrTransactionNotFound
	}
	for _, txn := range m.transactions {
		if txn.CheckoutRequestID == checkoutRequestID {
			return txn, nil
		}
	}
	return nil, ErrTransactionNotFound
}

func (m *MemoryStore) SetTransactionCheckoutRequest(transactionID, checkoutRequestID, merchantRequestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, exists := m.transactions[transactionID]
	if !exists {
		return ErrTransactionNotFound
	}
	txn.CheckoutRequestID = checkoutRequestID
	txn.MerchantRequestID = merchantRequestID
	return nil
}

func (m *MemoryStore) CompleteTransaction(checkoutRequestID, receiptNumber, metadata string) (*models.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.findByCheckoutRequestID(checkoutRequestID)
	if err != nil {
		return nil, false, err
	}
	if txn.Status != models.TransactionStatusPending {
		return txn, false, nil
	}
	txn.Status = models.TransactionStatusCompleted
	txn.MpesaReceiptNumber = receiptNumber
	txn.Metadata = metadata
	return txn, true, nil
}

func (m *MemoryStore) FailTransaction(checkoutRequestID, metadata string) (*models.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, err := m.findByCheckoutRequestID(checkoutRequestID)
	if err != nil {
		return nil, false, err
	}
	if txn.Status != models.TransactionStatusPending {
		return txn, false, nil
	}
	txn.Status = models.TransactionStatusFailed
	txn.Metadata = metadata
	return txn, true, nil
}

func (m *MemoryStore) ListTransactions() ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txns := make([]*models.Transaction, 0, len(m.transactions))
	for _, txn := range m.transactions {
		txns = append(txns, txn)
	}
	sort.Slice(txns, func(i, j int) bool {
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})
	return txns, nil
}

func (m *MemoryStore) GetStalePendingTransactions(olderThan time.Duration) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.Now().Add(-olderThan)
	var stale []*models.Transaction
	for _, txn := range m.transactions {
		if txn.Status == models.TransactionStatusPending && txn.CreatedAt.Before(cutoff) {
			stale = append(stale, txn)
		}
	}
	return stale, nil
}

// ===== Booking operations =====

func (m *MemoryStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if booking.BookingID == "" {
		booking.BookingID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	booking.CreatedAt = m.Now()

	m.bookings[booking.BookingID] = booking
	return booking, nil
}

func (m *MemoryStore) GetBooking(bookingID string) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	booking, exists := m.bookings[bookingID]
	if !exists {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (m *MemoryStore) GetBookingByTransaction(transactionID string) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, booking := range m.bookings {
		if booking.TransactionID == transactionID {
			return booking, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (m *MemoryStore) UpdateBookingStatus(bookingID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking, exists := m.bookings[bookingID]
	if !exists {
		return ErrBookingNotFound
	}
	booking.Status = status
	return nil
}
