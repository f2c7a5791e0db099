// Package matchmaker pairs waiting users into 1:1 anonymous chats through a
// durable pending queue, and runs the polling handshake by which the waiting
// side of a pairing learns its match.
package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anonchat/backend/internal/config"
	"anonchat/backend/internal/namegen"
	"anonchat/backend/internal/session"
	"anonchat/backend/internal/storage"
)

// ErrPairingConflict marks a rolled-back pairing attempt. The caller should
// retry RequestPartner; nothing was committed.
var ErrPairingConflict = errors.New("pairing conflict, retry")

// State is the client-visible matchmaking status.
type State string

const (
	StateMatched State = "matched"
	StateWaiting State = "waiting"
	StateIdle    State = "idle"
)

// Result is the outcome of a RequestPartner or PollMatch call.
type Result struct {
	State     State
	ChatID    string
	Pseudonym string
}

// Service відповідає за алгоритм пошуку співрозмовників.
type Service struct {
	Storage  storage.Storage
	Sessions session.Sessions
	Names    *namegen.Pool

	pendingTTL time.Duration
}

// NewService створює новий Matchmaker.
func NewService(s storage.Storage, sessions session.Sessions) *Service {
	return &Service{
		Storage:    s,
		Sessions:   sessions,
		Names:      namegen.NewPool(),
		pendingTTL: config.PendingEntryTTL,
	}
}

// RequestPartner tries to pair the caller with the oldest eligible waiter.
//
// A caller that already holds a pending entry is told "waiting" and nothing
// else happens, so retries are safe. Otherwise the claim-and-create sequence
// runs as one storage transaction; on success the caller learns its chat and
// pseudonym synchronously and the partner's entry carries the match result
// for their next poll. With no waiter available the caller is enqueued (an
// upsert, refreshing a stale entry's timestamp) and told "waiting".
func (m *Service) RequestPartner(ctx context.Context, userID string) (*Result, error) {
	entry, err := m.Storage.GetPendingEntry(userID)
	if err != nil {
		return nil, fmt.Errorf("check pending entry: %w", err)
	}
	if entry != nil {
		// Already queued; if a match landed in the meantime the next poll
		// will consume it.
		return &Result{State: StateWaiting}, nil
	}

	names := m.Names.Pick()
	pair, err := m.Storage.PairWithOldestWaiter(userID, time.Now().Add(-m.pendingTTL), names)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPairingConflict, err)
	}
	if pair != nil {
		sess := session.ChatSession{ChatID: pair.ChatID, Pseudonym: pair.CallerPseudonym}
		if err := m.Sessions.Set(ctx, userID, sess); err != nil {
			// The pairing is committed; the chat shell will re-establish the
			// session on entry.
			log.Printf("WARNING: failed to record session for user %s after match: %v", userID, err)
		}
		log.Printf("Match found: %s and %s in chat %s", userID, pair.PartnerID, pair.ChatID)
		return &Result{State: StateMatched, ChatID: pair.ChatID, Pseudonym: pair.CallerPseudonym}, nil
	}

	if err := m.Storage.UpsertPendingEntry(userID); err != nil {
		return nil, fmt.Errorf("enqueue: %w", err)
	}
	return &Result{State: StateWaiting}, nil
}

// PollMatch is the waiting side of the handshake. It is safe to call
// repeatedly and concurrently for the same user: once the match has been
// consumed the recorded session keeps answering "matched".
func (m *Service) PollMatch(ctx context.Context, userID string) (*Result, error) {
	entry, err := m.Storage.GetPendingEntry(userID)
	if err != nil {
		return nil, fmt.Errorf("check pending entry: %w", err)
	}

	if entry != nil {
		if !entry.Matched() {
			return &Result{State: StateWaiting}, nil
		}
		sess := session.ChatSession{ChatID: *entry.MatchedChatID, Pseudonym: *entry.AssignedName}
		if err := m.Sessions.Set(ctx, userID, sess); err != nil {
			return nil, fmt.Errorf("record session: %w", err)
		}
		if err := m.Storage.DeletePendingEntry(userID); err != nil {
			// The match is already recorded; report it and let the janitor
			// or a later poll clean the row up.
			log.Printf("WARNING: failed to delete consumed pending entry for user %s: %v", userID, err)
		}
		return &Result{State: StateMatched, ChatID: sess.ChatID, Pseudonym: sess.Pseudonym}, nil
	}

	// No queue entry: either the handshake already completed (session knows
	// the chat) or the caller never queued.
	sess, err := m.Sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess != nil {
		return &Result{State: StateMatched, ChatID: sess.ChatID, Pseudonym: sess.Pseudonym}, nil
	}
	return &Result{State: StateIdle}, nil
}

// CancelSearch dequeues the caller explicitly. Cancelling while not queued is
// a no-op.
func (m *Service) CancelSearch(ctx context.Context, userID string) error {
	return m.Storage.DeletePendingEntry(userID)
}

// Run запускає фонову Goroutine, що чистить застарілі записи черги.
func (m *Service) Run(ctx context.Context) {
	log.Println("Matchmaker janitor started.")
	ticker := time.NewTicker(config.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Storage.DeleteStalePendingEntries(time.Now().Add(-m.pendingTTL))
			if err != nil {
				log.Printf("ERROR: failed to expire stale pending entries: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Expired %d stale pending entries", n)
			}
		}
	}
}
