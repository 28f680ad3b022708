package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/user"
)

const DefaultTTL = 8 * time.Hour

var NowFunc = time.Now // mockable

type (
	Options struct {
		Store  Store
		Signer *Signer
		TTL    time.Duration
	}

	// Manager establishes, queries and tears down the session of a browser context (its Slot).
	//
	// States per slot: NoSession -> Active (Start) -> NoSession (End or expiry).
	// Start is the only way into Active; a session's role is never mutated.
	Manager struct {
		store  Store
		signer *Signer
		ttl    time.Duration
	}
)

func NewManager(opts Options) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  opts.Store,
		signer: opts.Signer,
		ttl:    ttl,
	}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Start persists a new session for id, replacing whatever session the slot held.
// The previous session is revoked before the new one is saved, so once Start returns it can
// never be observed as live again. Every call issues a fresh session ID.
func (m *Manager) Start(ctx context.Context, slot Slot, id user.Identity) (Session, error) {
	if id.SubjectID == "" || !id.Role.Valid() {
		return Session{}, errors.New("invalid identity")
	}

	if err := m.revoke(ctx, slot); err != nil {
		return Session{}, errors.Wrap(err, "revoking previous session")
	}

	now := NowFunc().UTC()
	sess := Session{
		ID:            uuid.New().String(),
		SubjectID:     id.SubjectID,
		Role:          id.Role,
		EstablishedAt: now,
		ExpiresAt:     now.Add(m.ttl),
	}
	token, err := m.signer.Sign(sess)
	if err != nil {
		return Session{}, errors.Wrap(err, "signing session token")
	}
	if err = m.store.Save(ctx, sess); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	slot.Put(token, sess.ExpiresAt)
	return sess, nil
}

// Current returns the live session of the slot.
// It returns ErrNoSession when there is none and ErrExpired when it has timed out;
// in both cases the slot is cleared. An expired session is returned along with ErrExpired
// (its Role is unknown when the token outlived the record).
func (m *Manager) Current(ctx context.Context, slot Slot) (Session, error) {
	token := slot.Token()
	if token == "" {
		return Session{}, ErrNoSession
	}

	now := NowFunc()
	claims, err := m.signer.Parse(token, now)
	if err != nil {
		if err == ErrExpired {
			if err = m.store.Delete(ctx, claims.ID); err != nil {
				return Session{}, errors.Wrap(err, "deleting expired session")
			}
			slot.Clear()
			expired := Session{ID: claims.ID, SubjectID: claims.Subject}
			if claims.ExpiresAt != nil {
				expired.ExpiresAt = claims.ExpiresAt.Time.UTC()
			}
			if claims.IssuedAt != nil {
				expired.EstablishedAt = claims.IssuedAt.Time.UTC()
			}
			return expired, ErrExpired
		}
		slot.Clear()
		return Session{}, ErrNoSession
	}

	sess, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			slot.Clear()
			return Session{}, ErrNoSession
		}
		return Session{}, errors.Wrap(err, "getting session")
	}
	if sess.SubjectID != claims.Subject {
		slot.Clear()
		return Session{}, ErrNoSession
	}
	if sess.Expired(now) {
		if err = m.store.Delete(ctx, sess.ID); err != nil {
			return Session{}, errors.Wrap(err, "deleting expired session")
		}
		slot.Clear()
		return sess, ErrExpired
	}
	return sess, nil
}

// End tears down the session of the slot. Ending an already ended session is a no-op.
func (m *Manager) End(ctx context.Context, slot Slot) error {
	if err := m.revoke(ctx, slot); err != nil {
		return errors.Wrap(err, "revoking session")
	}
	slot.Clear()
	return nil
}

// revoke deletes the server-side session the slot token references, if any.
func (m *Manager) revoke(ctx context.Context, slot Slot) error {
	token := slot.Token()
	if token == "" {
		return nil
	}
	claims, err := m.signer.Parse(token, NowFunc())
	if err != nil && err != ErrExpired {
		return nil // not ours: nothing to revoke
	}
	return m.store.Delete(ctx, claims.ID)
}
