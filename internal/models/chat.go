package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat is one 1:1 anonymous conversation. It is created exactly once per
// successful pairing and never mutated afterwards; deleting it cascades to
// its participants and messages.
type Chat struct {
	ID        string    `gorm:"primaryKey" json:"id"` // UUID
	CreatedAt time.Time `json:"created_at"`

	Participants []Participant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Messages     []Message     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a UUID when the ID is unset.
func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// Participant ties one user to one chat under the pseudonym assigned at
// pairing time. A user may accumulate many memberships over time; only the
// session record says which one is current.
type Participant struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ChatID    string `gorm:"type:uuid;not null;uniqueIndex:idx_chat_user" json:"chat_id"`
	UserID    string `gorm:"not null;uniqueIndex:idx_chat_user;index" json:"user_id"`
	Pseudonym string `gorm:"type:varchar(50);not null" json:"pseudonym"`
}
