package storage

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"anonchat/backend/internal/models"
)

// errNoWaiter aborts the pairing transaction when the queue has no candidate.
var errNoWaiter = errors.New("no waiting partner")

// GetPendingEntry returns the user's queue entry, or nil when absent.
func (s *Service) GetPendingEntry(userID string) (*models.PendingEntry, error) {
	var entry models.PendingEntry
	err := s.DB.First(&entry, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertPendingEntry enqueues the user, refreshing the timestamp if a stale
// entry is already there (the explicit upsert the original design implied with
// ON DUPLICATE KEY UPDATE).
func (s *Service) UpsertPendingEntry(userID string) error {
	entry := models.PendingEntry{
		UserID:      userID,
		RequestedAt: time.Now(),
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"requested_at": time.Now()}),
	}).Create(&entry).Error
}

// DeletePendingEntry removes the user's queue entry; deleting an absent entry
// is a no-op.
func (s *Service) DeletePendingEntry(userID string) error {
	return s.DB.Delete(&models.PendingEntry{}, "user_id = ?", userID).Error
}

// DeleteStalePendingEntries drops unmatched entries older than the cutoff.
// Matched entries are left alone so the owner's next poll can still consume
// the handshake.
func (s *Service) DeleteStalePendingEntries(olderThan time.Time) (int64, error) {
	res := s.DB.Where("matched_chat_id IS NULL AND requested_at < ?", olderThan).
		Delete(&models.PendingEntry{})
	return res.RowsAffected, res.Error
}

// PairWithOldestWaiter atomically claims the oldest unconsumed waiter for the
// caller. Inside one transaction it locks the partner's pending row, creates
// the chat, inserts both participants, and writes the match result into the
// partner's entry so their next poll observes it. The caller's side is
// returned synchronously; no pending entry is written for the caller.
//
// SKIP LOCKED closes the race in which two callers read the same oldest
// waiter: the second caller skips the locked row and sees the next candidate
// or none. Returns (nil, nil) when the queue holds no eligible waiter.
func (s *Service) PairWithOldestWaiter(callerID string, staleBefore time.Time, names [2]string) (*models.PairResult, error) {
	var result *models.PairResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		q := tx.Where("user_id <> ? AND matched_chat_id IS NULL AND requested_at >= ?", callerID, staleBefore).
			Order("requested_at ASC")
		if tx.Dialector.Name() == "postgres" {
			// SQLite (tests) serializes writers on its own and rejects the clause.
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		var partner models.PendingEntry
		err := q.First(&partner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNoWaiter
		}
		if err != nil {
			return err
		}

		chat := models.Chat{CreatedAt: time.Now()}
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}

		caller := models.Participant{ChatID: chat.ID, UserID: callerID, Pseudonym: names[0]}
		if err := tx.Create(&caller).Error; err != nil {
			return err
		}
		matched := models.Participant{ChatID: chat.ID, UserID: partner.UserID, Pseudonym: names[1]}
		if err := tx.Create(&matched).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.PendingEntry{}).
			Where("user_id = ?", partner.UserID).
			Updates(map[string]interface{}{
				"matched_chat_id": chat.ID,
				"assigned_name":   names[1],
			}).Error; err != nil {
			return err
		}

		result = &models.PairResult{
			ChatID:          chat.ID,
			CallerPseudonym: names[0],
			PartnerID:       partner.UserID,
		}
		return nil
	})

	if errors.Is(err, errNoWaiter) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: pairing transaction rolled back for user %s: %v", callerID, err)
		return nil, err
	}
	return result, nil
}
