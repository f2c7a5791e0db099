package models

import "time"

// Message is one line of chat, owned by a chat and authored by one of its
// participants. The auto-increment ID doubles as the client's incremental
// polling cursor; ordering is (sent_at, id) so ties break deterministically.
type Message struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ChatID        string    `gorm:"type:uuid;not null;index:idx_chat_msg" json:"chat_id"`
	ParticipantID uint      `gorm:"not null;index" json:"participant_id"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	SentAt        time.Time `gorm:"autoCreateTime;index" json:"sent_at"`
}

// MessageView is a message joined with its author's pseudonym, the shape the
// polling endpoint returns.
type MessageView struct {
	ID              uint      `json:"id"`
	AuthorPseudonym string    `json:"author_pseudonym"`
	Text            string    `json:"text"`
	SentAt          time.Time `json:"sent_at"`
}
