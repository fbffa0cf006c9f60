package store

import (
	"context"
	"time"

	"github.com/reychango/reychango-server/internal/docstore"
	"github.com/reychango/reychango-server/internal/domain"
)

// sessionDoc is the stored form of a session. Times are kept as store timestamps
// so that expired sessions can be found by comparing them.
type sessionDoc struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	TokenID   string    `json:"tokenId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateSession stores a new admin session under session.ID.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	err := s.db.Collection(CollectionSessions).Doc(session.ID).Set(ctx, docstore.Data{
		"uid":       session.UID,
		"email":     session.Email,
		"tokenId":   session.TokenID,
		"createdAt": session.CreatedAt,
		"expiresAt": session.ExpiresAt,
	})
	return storeError(err, "failed to create session")
}

// GetSession returns the session stored under id, or ErrSessionNotFound.
// Expired sessions are reported as not found.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	snap, err := s.db.Collection(CollectionSessions).Doc(id).Get(ctx)
	if err != nil {
		switch docstore.KindOf(err) {
		case docstore.KindNotFound, docstore.KindInvalidArgument:
			return nil, ErrSessionNotFound
		}
		return nil, storeError(err, "failed to get session")
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, storeError(err, "failed to decode session")
	}
	session := &domain.Session{
		ID:        snap.ID,
		UID:       doc.UID,
		Email:     doc.Email,
		TokenID:   doc.TokenID,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}
	if session.IsExpired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// DeleteSession removes a session. Deleting a missing session succeeds.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return storeError(s.db.Collection(CollectionSessions).Doc(id).Delete(ctx), "failed to delete session")
}

// DeleteExpiredSessions removes every session that has expired and returns how many were removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	snaps, err := s.db.Collection(CollectionSessions).Documents(ctx)
	if err != nil {
		return 0, storeError(err, "failed to list sessions")
	}

	now := time.Now()
	deleted := 0
	for _, snap := range snaps {
		expires, ok := snap.Data()["expiresAt"].(docstore.Timestamp)
		if ok && now.Before(expires.Time()) {
			continue
		}
		if err := s.db.Collection(CollectionSessions).Doc(snap.ID).Delete(ctx); err != nil {
			return deleted, storeError(err, "failed to delete session")
		}
		deleted++
	}
	return deleted, nil
}
