package models

import "time"

// PendingEntry is one user's outstanding request for a chat partner.
// Lifecycle: absent -> waiting (match fields nil) -> matched (a matcher filled
// them in) -> absent (deleted once the waiting side's poll observes the match).
// The user-id primary key is what guarantees at most one entry per user.
type PendingEntry struct {
	UserID        string    `gorm:"primaryKey" json:"user_id"`
	RequestedAt   time.Time `gorm:"not null;index" json:"requested_at"`
	MatchedChatID *string   `gorm:"type:uuid" json:"matched_chat_id"`
	AssignedName  *string   `gorm:"type:varchar(50)" json:"assigned_name"`
}

// Matched reports whether a matcher has already consumed this entry.
func (p *PendingEntry) Matched() bool {
	return p.MatchedChatID != nil && p.AssignedName != nil
}

// PairResult is what a successful synchronous pairing hands back to the caller
// of RequestPartner.
type PairResult struct {
	ChatID          string
	CallerPseudonym string
	PartnerID       string
}

// ChatSummary is one row of a user's conversation archive.
type ChatSummary struct {
	ChatID    string    `json:"chat_id"`
	Pseudonym string    `json:"pseudonym"`
	CreatedAt time.Time `json:"created_at"`
}
