package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Required for pq.StringArray
	"gorm.io/gorm"
)

// User is a registered account. Identity is the unique email plus a bcrypt
// password hash; everything a chat partner ever sees goes through per-chat
// pseudonyms, never through this record.
type User struct {
	ID           string         `gorm:"primaryKey" json:"id"` // UUID
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Interests    pq.StringArray `gorm:"type:text[]" json:"interests"` // advisory tags, not consulted by pairing
	CreatedAt    time.Time      `json:"created_at"`
}

// BeforeCreate is a GORM hook that assigns a UUID when the ID is unset.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
