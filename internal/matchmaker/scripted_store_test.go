package matchmaker_test

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"anonchat/backend/internal/models"
)

// scriptedStore is an in-memory storage.Storage with honest queue-and-pair
// semantics, for walking multi-user flows without a database. The flag
// pairingDisabled makes every caller observe an empty queue, which is how the
// "two simultaneous lone requests" race presents itself.
type scriptedStore struct {
	mu              sync.Mutex
	pending         map[string]*models.PendingEntry
	participants    []models.Participant
	chatsCreated    int
	pairingDisabled bool
	nextParticipant uint
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{pending: make(map[string]*models.PendingEntry)}
}

func (s *scriptedStore) GetPendingEntry(userID string) (*models.PendingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[userID]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (s *scriptedStore) UpsertPendingEntry(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.pending[userID]; ok {
		entry.RequestedAt = time.Now()
		return nil
	}
	s.pending[userID] = &models.PendingEntry{UserID: userID, RequestedAt: time.Now()}
	return nil
}

func (s *scriptedStore) DeletePendingEntry(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, userID)
	return nil
}

func (s *scriptedStore) DeleteStalePendingEntries(olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for userID, entry := range s.pending {
		if entry.MatchedChatID == nil && entry.RequestedAt.Before(olderThan) {
			delete(s.pending, userID)
			n++
		}
	}
	return n, nil
}

func (s *scriptedStore) PairWithOldestWaiter(callerID string, staleBefore time.Time, names [2]string) (*models.PairResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pairingDisabled {
		return nil, nil
	}

	var partner *models.PendingEntry
	for userID, entry := range s.pending {
		if userID == callerID || entry.MatchedChatID != nil || entry.RequestedAt.Before(staleBefore) {
			continue
		}
		if partner == nil || entry.RequestedAt.Before(partner.RequestedAt) {
			partner = entry
		}
	}
	if partner == nil {
		return nil, nil
	}

	chatID := uuid.New().String()
	s.chatsCreated++
	s.nextParticipant++
	s.participants = append(s.participants, models.Participant{
		ID: s.nextParticipant, ChatID: chatID, UserID: callerID, Pseudonym: names[0],
	})
	s.nextParticipant++
	s.participants = append(s.participants, models.Participant{
		ID: s.nextParticipant, ChatID: chatID, UserID: partner.UserID, Pseudonym: names[1],
	})
	partner.MatchedChatID = &chatID
	assigned := names[1]
	partner.AssignedName = &assigned

	return &models.PairResult{ChatID: chatID, CallerPseudonym: names[0], PartnerID: partner.UserID}, nil
}

func (s *scriptedStore) GetParticipant(userID, chatID string) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.participants {
		if s.participants[i].UserID == userID && s.participants[i].ChatID == chatID {
			cp := s.participants[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// The matchmaker never touches the remaining Storage methods.

func (s *scriptedStore) CreateUser(*models.User) error                     { return nil }
func (s *scriptedStore) GetUserByEmail(string) (*models.User, error)       { return nil, nil }
func (s *scriptedStore) GetUserByID(string) (*models.User, error)          { return nil, nil }
func (s *scriptedStore) ListChatsForUser(string) ([]models.ChatSummary, error) {
	return nil, nil
}
func (s *scriptedStore) DeleteChat(string) error { return nil }
func (s *scriptedStore) AppendMessage(string, uint, string) (*models.Message, error) {
	return nil, nil
}
func (s *scriptedStore) ListMessagesSince(string, uint) ([]models.MessageView, error) {
	return nil, nil
}
