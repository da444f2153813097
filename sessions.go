package main

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// This file owns the per-session scratch state the dialogue collector fills
// in step by step. A session holds at most one active dialogue; its state is
// created on entry, mutated once per step, and discarded on completion or
// cancellation. The store is an interface so a single-replica deployment can
// keep sessions in memory while a multi-replica one keeps them in Redis.

// Dialogue stages. There is no stored terminal stage: reaching the end of a
// dialogue (successfully or via /cancel) deletes the session outright, so a
// re-entered dialogue always starts from a clean record.
const (
	StageIdle                = "idle"
	StageAwaitingOrigin      = "awaiting_origin"
	StageAwaitingDestination = "awaiting_destination"
	StageAwaitingDate        = "awaiting_date"
)

// stageTransitions encodes which stage moves are legal. Guarding transitions
// through a table keeps a corrupted or stale record from skipping a step.
var stageTransitions = map[string]map[string]struct{}{
	StageIdle:                {StageAwaitingOrigin: {}},
	StageAwaitingOrigin:      {StageAwaitingDestination: {}},
	StageAwaitingDestination: {StageAwaitingDate: {}},
	StageAwaitingDate:        {},
}

// canAdvance returns whether a dialogue may move from one stage to another.
func canAdvance(from, to string) bool {
	allowed, ok := stageTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// ConversationState is the scratch record for one session's active dialogue.
type ConversationState struct {
	Stage       string    `json:"stage"`
	Origin      string    `json:"origin,omitempty"`
	Destination string    `json:"destination,omitempty"`
	TravelDate  string    `json:"travel_date,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SessionStore owns ConversationState records keyed by session id.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (ConversationState, bool, error)
	Put(ctx context.Context, sessionID string, state ConversationState) error
	Delete(ctx context.Context, sessionID string) error
}

// MemorySessionStore is the default single-replica store: a mutex-guarded
// map. Stale entries are reaped by the janitor via PurgeOlderThan.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]ConversationState
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]ConversationState),
	}
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (ConversationState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[sessionID]
	return state, ok, nil
}

func (s *MemorySessionStore) Put(_ context.Context, sessionID string, state ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = state
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// PurgeOlderThan removes every session whose last update is older than age
// and returns how many were removed.
func (s *MemorySessionStore) PurgeOlderThan(age time.Duration) int {
	cutoff := time.Now().Add(-age)
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for id, state := range s.sessions {
		if state.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged
}

// RedisSessionStore keeps sessions in Redis as JSON values with a TTL, so
// abandoned dialogues expire without a janitor and replicas share state.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return "safarbot:session:" + sessionID
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (ConversationState, bool, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return ConversationState{}, false, nil
	}
	if err != nil {
		return ConversationState{}, false, err
	}
	var state ConversationState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return ConversationState{}, false, err
	}
	return state, true, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, sessionID string, state ConversationState) error {
	p, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sessionID), p, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}
