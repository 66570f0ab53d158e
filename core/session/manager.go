package session

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrLoginInProgress rejects a login attempt while another is in flight.
	ErrLoginInProgress = errors.New("another login attempt is in progress")
)

// Credentials is a login request.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	return validate.Struct(c)
}

// Authenticator performs the external login call and returns the
// authenticated identity with its bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (identity.Identity, string, error)
}

// State is a read-only snapshot of the current session.
type State struct {
	Identity *identity.Identity
	Token    string

	// Initialising is true until the one-time bootstrap read of the Store
	// completes. Route decisions must not redirect while it is set.
	Initialising bool
	// Loading is true only during an in-flight login attempt.
	Loading bool
	// Err holds the last login failure message, cleared on the next attempt.
	Err string
}

func (st State) Authenticated() bool {
	return st.Identity != nil && st.Token != ""
}

// Manager owns the session record. It is the only writer of session state;
// consumers get read-only State snapshots.
type Manager struct {
	store    Store
	auth     Authenticator
	validate *validator.Validate
	log      core.Logger

	mu        sync.Mutex
	bootstrap sync.Once
	state     State
}

func NewManager(store Store, auth Authenticator, validate *validator.Validate, log core.Logger) *Manager {
	return &Manager{
		store:    store,
		auth:     auth,
		validate: validate,
		log:      log,
		state:    State{Initialising: true},
	}
}

// Bootstrap loads persisted credentials into memory. It runs exactly once per
// process; the Initialising flag is cleared in a deferred path so a failing
// store read can never leave the app stuck initialising.
func (m *Manager) Bootstrap() {
	m.bootstrap.Do(func() {
		defer func() {
			rec := recover()
			m.mu.Lock()
			m.state.Initialising = false
			m.mu.Unlock()
			if rec != nil && m.log != nil {
				m.log.Error("loading stored credentials", rec)
			}
		}()

		rec, ok := m.store.Read()
		if !ok || rec.Identity == nil || rec.Token == "" {
			// absent or half-set record: start unauthenticated
			return
		}
		m.mu.Lock()
		m.state.Identity = rec.Identity
		m.state.Token = rec.Token
		m.mu.Unlock()
	})
}

// State returns a snapshot of the current session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state
	if st.Identity != nil {
		usr := *st.Identity
		st.Identity = &usr
	}
	return st
}

// SetAuthData atomically updates the in-memory session and persists it.
// Used after a successful external login/register call.
func (m *Manager) SetAuthData(usr identity.Identity, token string) error {
	m.mu.Lock()
	m.state.Identity = &usr
	m.state.Token = token
	m.state.Err = ""
	m.mu.Unlock()
	return errors.Wrap(m.store.Write(usr, token), "persisting credentials")
}

// Logout atomically clears the in-memory session and the Store. It is safe to
// call with no session and from any error handling path.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.state.Identity = nil
	m.state.Token = ""
	m.mu.Unlock()
	return errors.Wrap(m.store.Clear(), "clearing credentials")
}

// Login authenticates against the external API and, on success, installs the
// returned identity and token. A failed attempt records a displayable error
// and leaves any existing session untouched. One attempt runs at a time;
// a call while another is in flight is rejected with ErrLoginInProgress.
func (m *Manager) Login(ctx context.Context, creds Credentials) error {
	m.mu.Lock()
	if m.state.Loading {
		m.mu.Unlock()
		return ErrLoginInProgress
	}
	m.state.Loading = true
	m.state.Err = ""
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.state.Loading = false
		m.mu.Unlock()
	}()

	if err := creds.Validate(m.validate); err != nil {
		m.setErr(validationErrMessage(err))
		return err
	}

	usr, token, err := m.auth.Authenticate(ctx, creds)
	if err != nil {
		m.setErr(loginErrMessage(err))
		return errors.Wrap(err, "authenticating")
	}
	return m.SetAuthData(usr, token)
}

func (m *Manager) setErr(msg string) {
	m.mu.Lock()
	m.state.Err = msg
	m.mu.Unlock()
}

// validationErrMessage renders validator field errors through the registered
// translator so the message names the failing fields.
func validationErrMessage(err error) string {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok || core.Translator == nil {
		return "invalid credentials input"
	}
	parts := make([]string, 0, len(vErrs))
	for _, fErr := range vErrs {
		parts = append(parts, fErr.Field()+": "+fErr.Translate(core.Translator))
	}
	return strings.Join(parts, "; ")
}

func loginErrMessage(err error) string {
	if vErr, ok := errors.Cause(err).(*core.ValidationError); ok && vErr.Error() != "" {
		return vErr.Error()
	}
	return "login failed: " + err.Error()
}
