package session

import (
	"github.com/darasahq/darasa/core/identity"
)

// Record is the paired identity and token held in memory and in persisted
// storage. Both fields are set or both are empty; a half-set record is never
// observable.
type Record struct {
	Identity *identity.Identity `json:"user"`
	Token    string             `json:"token"`
}

func (r Record) IsZero() bool {
	return r.Identity == nil && r.Token == ""
}

// Store persists a single credential record under one fixed key.
// Read reports ok=false for an absent, unreadable or corrupt record; it
// never surfaces an error to the caller. Clear is idempotent.
type Store interface {
	Read() (Record, bool)
	Write(usr identity.Identity, token string) error
	Clear() error
}
