package storage

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"anonchat/backend/internal/models"
)

var (
	// ErrEmptyMessage is returned when a message is blank after trimming.
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrEmailTaken is returned when registration hits the unique email index.
	ErrEmailTaken = errors.New("email already registered")
)

type Storage interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)

	// Pending queue
	GetPendingEntry(userID string) (*models.PendingEntry, error)
	UpsertPendingEntry(userID string) error
	DeletePendingEntry(userID string) error
	DeleteStalePendingEntries(olderThan time.Time) (int64, error)

	// Pairing (transactional, see pairing.go)
	PairWithOldestWaiter(callerID string, staleBefore time.Time, names [2]string) (*models.PairResult, error)

	// Participants & chats
	GetParticipant(userID, chatID string) (*models.Participant, error)
	ListChatsForUser(userID string) ([]models.ChatSummary, error)
	DeleteChat(chatID string) error

	// Messages
	AppendMessage(chatID string, participantID uint, text string) (*models.Message, error)
	ListMessagesSince(chatID string, afterID uint) ([]models.MessageView, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// CreateUser inserts a new account. The unique index on email turns duplicate
// registrations into ErrEmailTaken.
func (s *Service) CreateUser(user *models.User) error {
	if err := s.DB.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetParticipant is the chat access gate: it returns the membership row for
// (userID, chatID), or nil when the user does not belong to that chat.
func (s *Service) GetParticipant(userID, chatID string) (*models.Participant, error) {
	var p models.Participant
	err := s.DB.Where("user_id = ? AND chat_id = ?", userID, chatID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: failed to load participant for user %s in chat %s: %v", userID, chatID, err)
		return nil, err
	}
	return &p, nil
}

// ListChatsForUser returns the user's conversation archive, newest chat first.
func (s *Service) ListChatsForUser(userID string) ([]models.ChatSummary, error) {
	var chats []models.ChatSummary
	err := s.DB.Table("participants").
		Select("participants.chat_id AS chat_id, participants.pseudonym AS pseudonym, chats.created_at AS created_at").
		Joins("JOIN chats ON chats.id = participants.chat_id").
		Where("participants.user_id = ?", userID).
		Order("chats.created_at DESC").
		Scan(&chats).Error
	if err != nil {
		log.Printf("ERROR: failed to list chats for user %s: %v", userID, err)
		return nil, err
	}
	return chats, nil
}

// DeleteChat removes a chat; participants and messages go with it.
func (s *Service) DeleteChat(chatID string) error {
	return s.DB.Select("Participants", "Messages").Delete(&models.Chat{ID: chatID}).Error
}

// AppendMessage durably appends one message. The text must be non-blank after
// trimming; the database assigns the monotonic id and timestamp.
func (s *Service) AppendMessage(chatID string, participantID uint, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	msg := models.Message{
		ChatID:        chatID,
		ParticipantID: participantID,
		Text:          text,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		log.Printf("ERROR: failed to save message for chat %s: %v", chatID, err)
		return nil, err
	}
	return &msg, nil
}

// ListMessagesSince returns every message of the chat with id > afterID,
// joined with the author's pseudonym, ordered by (sent_at, id) ascending.
func (s *Service) ListMessagesSince(chatID string, afterID uint) ([]models.MessageView, error) {
	var views []models.MessageView
	err := s.DB.Table("messages").
		Select("messages.id AS id, participants.pseudonym AS author_pseudonym, messages.text AS text, messages.sent_at AS sent_at").
		Joins("JOIN participants ON participants.id = messages.participant_id").
		Where("messages.chat_id = ? AND messages.id > ?", chatID, afterID).
		Order("messages.sent_at ASC, messages.id ASC").
		Scan(&views).Error
	if err != nil {
		log.Printf("ERROR: failed to get messages for chat %s: %v", chatID, err)
		return nil, err
	}
	return views, nil
}
