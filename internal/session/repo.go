package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 72 * time.Hour

// Repo stores sessions as JSON documents in Redis. Every save refreshes the TTL.
type Repo struct {
	Client redis.UniversalClient
	TTL    time.Duration
	Prefix string
}

func (r Repo) key(id string) string {
	prefix := r.Prefix
	if prefix == "" {
		prefix = "session:"
	}
	return prefix + id
}

func (r Repo) ttl() time.Duration {
	if r.TTL <= 0 {
		return DefaultTTL
	}
	return r.TTL
}

// Get loads the session stored under id.
func (r Repo) Get(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNotFound
	}
	data, err := r.Client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}

// Save writes the session document.
func (r Repo) Save(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.key(s.ID), data, r.ttl()).Err()
}
