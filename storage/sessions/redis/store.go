package redisessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/session"
)

const DefaultPrefix = "session:"

// Store keeps sessions in Redis. Keys expire with the session.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, now: time.Now}
}

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) Save(ctx context.Context, sess session.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "marshalling session")
	}
	if err = s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return storeError(err, "redis set")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (session.Session, error) {
	if id == "" {
		return session.Session{}, session.ErrNotFound
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, storeError(err, "redis get")
	}

	var sess session.Session
	if err = json.Unmarshal(data, &sess); err != nil {
		return session.Session{}, errors.Wrap(err, "unmarshalling session")
	}
	if sess.Expired(s.now()) {
		if err = s.Delete(ctx, id); err != nil {
			return session.Session{}, errors.Wrap(err, "deleting expired session")
		}
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return storeError(err, "redis del")
	}
	return nil
}

// storeError wraps err. A closed client never recovers, so the server is asked to shut down.
func storeError(err error, msg string) error {
	if errors.Is(err, redis.ErrClosed) {
		return core.NewShutdownError(msg + ": session store client is closed")
	}
	return errors.Wrap(err, msg)
}
