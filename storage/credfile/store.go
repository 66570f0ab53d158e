// Package credfile persists the session credential record as a single JSON
// file, the desktop analogue of the web client's one localStorage key.
package credfile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/session"
)

type Store struct {
	path string
}

var _ session.Store = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Read loads the stored record. An absent, unreadable or corrupt file all
// report ok=false; corruption is recovered locally, never surfaced.
func (s *Store) Read() (session.Record, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return session.Record{}, false
	}
	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return session.Record{}, false
	}
	if rec.IsZero() {
		return session.Record{}, false
	}
	return rec, true
}

// Write persists the record, overwriting any prior value.
func (s *Store) Write(usr identity.Identity, token string) error {
	data, err := json.Marshal(session.Record{Identity: &usr, Token: token})
	if err != nil {
		return errors.Wrap(err, "marshalling credential record")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating credentials dir")
	}
	return errors.Wrap(os.WriteFile(s.path, data, 0o600), "writing credentials file")
}

// Clear removes the stored record. Clearing an already-empty store is not an
// error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing credentials file")
	}
	return nil
}
