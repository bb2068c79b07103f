// Package session holds per-browser state in Redis, keyed by a session ID
// that travels in a signed cookie.
//
// The state is a typed struct, not a free-form string map — every read and
// write goes through a named field, so a typo is a compile error instead of
// a silently-missing session key. Browsing state (cursors, date window,
// genre) lives alongside the identity but is cleared independently of it:
// entering a new listing context must never log the user out.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TTL is how long an idle session survives in Redis. Every save refreshes
// it, so only abandoned sessions expire.
const TTL = 24 * time.Hour

// DateRange is the date window of the listing the user is currently paging
// through. It is carried across next/previous navigation so the rendered
// page keeps its context without the client resubmitting anything.
type DateRange struct {
	Label string `json:"label,omitempty"` // "home", "upcoming" or "newest"
	From  string `json:"from,omitempty"`  // YYYY-MM-DD
	To    string `json:"to,omitempty"`    // YYYY-MM-DD
}

// State is the typed per-browser session state.
//
// NextCursor and PrevCursor are opaque page URLs returned by the catalog
// API. At most one of them is consumed per request, and every upstream
// response replaces both — the new page becomes the reference point and the
// old cursors are discarded.
type State struct {
	Username   string    `json:"username,omitempty"`
	NextCursor string    `json:"next_cursor,omitempty"`
	PrevCursor string    `json:"prev_cursor,omitempty"`
	DateRange  DateRange `json:"date_range,omitempty"`
	Genre      string    `json:"genre,omitempty"`
}

// ClearExceptIdentity drops everything except the logged-in username. Called
// on entry to each top-level listing route so cursors from a previous browse
// context never leak into a new one. Idempotent.
func (s *State) ClearExceptIdentity() {
	*s = State{Username: s.Username}
}

// Store persists session state in Redis as one JSON document per session.
//
// Redis is external to the process and already concurrency-safe, which is
// all the coordination a per-browser-session value needs — no two requests
// from different sessions ever touch the same key.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a Store on the given Redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: TTL}
}

func sessionKey(id string) string {
	return "sess:" + id
}

// Load fetches the state for a session ID. A session Redis has never seen
// (or has expired) comes back as a fresh zero-value state, not an error.
func (s *Store) Load(ctx context.Context, id string) (*State, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("session: loading %s: %w", id, err)
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		// A corrupt document is unrecoverable; start the session over
		// rather than failing every subsequent request.
		return &State{}, nil
	}

	return &st, nil
}

// Save writes the state back and refreshes the TTL.
func (s *Store) Save(ctx context.Context, id string, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("session: encoding %s: %w", id, err)
	}

	if err := s.rdb.Set(ctx, sessionKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: saving %s: %w", id, err)
	}

	return nil
}

// Delete removes the session document entirely (used at logout).
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session: deleting %s: %w", id, err)
	}
	return nil
}
