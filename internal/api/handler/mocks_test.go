package handler_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"anonchat/backend/internal/models"
	"anonchat/backend/internal/session"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetPendingEntry(userID string) (*models.PendingEntry, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingEntry), args.Error(1)
}

func (m *MockStorage) UpsertPendingEntry(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) DeletePendingEntry(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) DeleteStalePendingEntries(olderThan time.Time) (int64, error) {
	args := m.Called(olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) PairWithOldestWaiter(callerID string, staleBefore time.Time, names [2]string) (*models.PairResult, error) {
	args := m.Called(callerID, staleBefore, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PairResult), args.Error(1)
}

func (m *MockStorage) GetParticipant(userID, chatID string) (*models.Participant, error) {
	args := m.Called(userID, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockStorage) ListChatsForUser(userID string) ([]models.ChatSummary, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatSummary), args.Error(1)
}

func (m *MockStorage) DeleteChat(chatID string) error {
	args := m.Called(chatID)
	return args.Error(0)
}

func (m *MockStorage) AppendMessage(chatID string, participantID uint, text string) (*models.Message, error) {
	args := m.Called(chatID, participantID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) ListMessagesSince(chatID string, afterID uint) ([]models.MessageView, error) {
	args := m.Called(chatID, afterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MessageView), args.Error(1)
}

// fakeSessions is an in-memory session.Sessions.
type fakeSessions struct {
	mu      sync.Mutex
	records map[string]session.ChatSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{records: make(map[string]session.ChatSession)}
}

func (f *fakeSessions) Get(_ context.Context, userID string) (*session.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sess, ok := f.records[userID]; ok {
		return &sess, nil
	}
	return nil, nil
}

func (f *fakeSessions) Set(_ context.Context, userID string, sess session.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[userID] = sess
	return nil
}

func (f *fakeSessions) Clear(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, userID)
	return nil
}
