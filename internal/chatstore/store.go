// Package chatstore persists chat conversations between utterances: the
// conversation state and the logged-in customer of each session.
package chatstore

import (
	"context"
	"errors"

	"github.com/spec-kit/farm-shop/internal/chat"
)

// ErrSessionNotFound is returned when a session has no stored state, either
// because it never existed or because it expired.
var ErrSessionNotFound = errors.New("chat session not found")

// Store keeps chat sessions keyed by session id.
type Store interface {
	Load(ctx context.Context, sessionID string) (*chat.State, error)
	Save(ctx context.Context, sessionID string, state chat.State) error
	Delete(ctx context.Context, sessionID string) error

	LoadUser(ctx context.Context, sessionID string) (*chat.SessionUser, error)
	SaveUser(ctx context.Context, sessionID string, user chat.SessionUser) error
	ClearUser(ctx context.Context, sessionID string) error
}

// Sessions scopes store to one session so it can back a chat.Controller.
func Sessions(store Store, sessionID string) chat.SessionStore {
	return scoped{store: store, id: sessionID}
}

type scoped struct {
	store Store
	id    string
}

func (s scoped) LoadUser(ctx context.Context) (*chat.SessionUser, error) {
	return s.store.LoadUser(ctx, s.id)
}

func (s scoped) SaveUser(ctx context.Context, user chat.SessionUser) error {
	return s.store.SaveUser(ctx, s.id, user)
}

func (s scoped) ClearUser(ctx context.Context) error {
	return s.store.ClearUser(ctx, s.id)
}
