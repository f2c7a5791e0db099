// Package session keeps the per-user "current chat" association as an explicit
// server-side record in Redis, so request handlers carry no ambient state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"anonchat/backend/internal/config"
)

const keyPrefix = "session:chat:"

// ChatSession is the session-local view of a pairing: which chat the user is
// currently in and under which pseudonym.
type ChatSession struct {
	ChatID    string `json:"chat_id"`
	Pseudonym string `json:"pseudonym"`
}

// Sessions is the handler- and matchmaker-facing contract.
type Sessions interface {
	// Get returns the user's current chat session, or nil when none is recorded.
	Get(ctx context.Context, userID string) (*ChatSession, error)
	// Set records (or replaces) the user's current chat session.
	Set(ctx context.Context, userID string, sess ChatSession) error
	// Clear removes the association. Clearing an absent session is a no-op.
	Clear(ctx context.Context, userID string) error
}

// Store implements Sessions on Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: config.SessionTTL}
}

func (s *Store) Get(ctx context.Context, userID string) (*ChatSession, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess ChatSession
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) Set(ctx context.Context, userID string, sess ChatSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPrefix+userID, data, s.ttl).Err()
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, keyPrefix+userID).Err()
}
