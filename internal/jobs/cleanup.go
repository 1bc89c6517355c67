package jobs

import (
	"log"
	"time"

	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

const (
	cleanupInterval = time.Hour
	staleAge        = 24 * time.Hour
)

// CleanupJob periodically purges expired OTP rows and flags transactions
// that have been pending for suspiciously long. Pending transactions are
// never transitioned here; the gateway callback is the only writer of
// terminal statuses.
type CleanupJob struct {
	store storage.Store
	stop  chan struct{}
}

// NewCleanupJob creates the cleanup job scheduler
func NewCleanupJob(store storage.Store) *CleanupJob {
	return &CleanupJob{
		store: store,
		stop:  make(chan struct{}),
	}
}

// Start begins the hourly cleanup loop
func (j *CleanupJob) Start() {
	log.Println("Starting cleanup job...")
	go j.run()
}

// Stop halts the cleanup loop
func (j *CleanupJob) Stop() {
	log.Println("Stopping cleanup job...")
	close(j.stop)
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			j.runOnce()
		}
	}
}

func (j *CleanupJob) runOnce() {
	if err := j.store.DeleteExpiredOTPs(); err != nil {
		log.Printf("Failed to purge expired OTPs: %v", err)
	}

	stale, err := j.store.GetStalePendingTransactions(staleAge)
	if err != nil {
		log.Printf("Failed to check stale transactions: %v", err)
		return
	}
	for _, txn := range stale {
		log.Printf("⚠️  Transaction %s pending since %s, no gateway callback received",
			txn.TransactionID, txn.CreatedAt.Format(time.RFC3339))
	}
}
