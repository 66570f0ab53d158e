// Package credmem provides an in-memory credential store for tests and the
// DEV sandbox.
package credmem

import (
	"sync"

	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/session"
)

type Store struct {
	mu  sync.Mutex
	rec *session.Record
}

var _ session.Store = (*Store)(nil)

func NewStore() *Store { return &Store{} }

func (s *Store) Read() (session.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return session.Record{}, false
	}
	rec := *s.rec
	if rec.Identity != nil {
		usr := *rec.Identity
		rec.Identity = &usr
	}
	return rec, true
}

func (s *Store) Write(usr identity.Identity, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &session.Record{Identity: &usr, Token: token}
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}
