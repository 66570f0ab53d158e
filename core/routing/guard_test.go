package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/session"
)

func authedState() session.State {
	return session.State{
		Identity: &identity.Identity{ID: "1", Role: identity.RoleRef{Name: identity.RoleAdmin}},
		Token:    "abc",
	}
}

func anonState() session.State { return session.State{} }

func initialisingState() session.State { return session.State{Initialising: true} }

func TestGuard_Decide(t *testing.T) {
	guard := NewGuard()

	tests := []struct {
		name string
		st   session.State
		path string
		want Decision
	}{
		// while initialising, nothing renders and nothing redirects
		{"initialising guarded", initialisingState(), "/admin", Decision{Outcome: Suspend}},
		{"initialising guarded deep link", initialisingState(), "/admin/reports", Decision{Outcome: Suspend}},
		{"initialising public-only", initialisingState(), "/login", Decision{Outcome: Suspend}},

		// done, no session
		{"anon guarded", anonState(), "/admin", Decision{Outcome: RedirectLogin, Target: "/login"}},
		{"anon guarded deep link", anonState(), "/admin/users", Decision{Outcome: RedirectLogin, Target: "/login"}},
		{"anon user area", anonState(), "/user/profile", Decision{Outcome: RedirectLogin, Target: "/login"}},
		{"anon login form", anonState(), "/login", Decision{Outcome: Render}},
		{"anon signup form", anonState(), "/signup", Decision{Outcome: Render}},

		// done, session present
		{"authed guarded", authedState(), "/admin", Decision{Outcome: Render}},
		{"authed guarded deep link", authedState(), "/admin/activities", Decision{Outcome: Render}},
		{"authed viewer area", authedState(), "/viewer/dashboard", Decision{Outcome: Render}},
		{"authed login form", authedState(), "/login", Decision{Outcome: RedirectHome, Target: "/admin"}},
		{"authed signup form", authedState(), "/signup", Decision{Outcome: RedirectHome, Target: "/admin"}},

		// public paths render in any state
		{"unmatched path anon", anonState(), "/about", Decision{Outcome: Render}},
		{"unmatched path initialising", initialisingState(), "/about", Decision{Outcome: Render}},

		// bare root forwards to login
		{"root anon", anonState(), "/", Decision{Outcome: RedirectLogin, Target: "/login"}},
		{"root authed", authedState(), "/", Decision{Outcome: RedirectLogin, Target: "/login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.Decide(tt.st, tt.path))
		})
	}
}

// While initialising, the guard never redirects, whatever the (possibly
// stale) in-memory session looks like.
func TestGuard_neverRedirectsWhileInitialising(t *testing.T) {
	guard := NewGuard()
	paths := []string{"/login", "/signup", "/admin", "/admin/users", "/user/x", "/viewer/x"}

	states := []session.State{
		{Initialising: true},
		{Initialising: true, Token: "stale"},
		{Initialising: true, Identity: &identity.Identity{ID: "1"}, Token: "stale"},
	}
	for _, st := range states {
		for _, path := range paths {
			dec := guard.Decide(st, path)
			assert.NotEqual(t, RedirectLogin, dec.Outcome, "path %s", path)
			assert.NotEqual(t, RedirectHome, dec.Outcome, "path %s", path)
		}
	}
}

func TestGuard_PolicyFor(t *testing.T) {
	guard := NewGuard()

	assert.Equal(t, PublicOnly, guard.PolicyFor("/login"))
	assert.Equal(t, Authenticated, guard.PolicyFor("/admin"))
	assert.Equal(t, Authenticated, guard.PolicyFor("/admin/roles"))
	assert.Equal(t, Public, guard.PolicyFor("/loginx"))     // no partial prefix match
	assert.Equal(t, Public, guard.PolicyFor("/adminpanel")) // "/admin/*" only covers the subtree
}

func TestRoute_match(t *testing.T) {
	wildcard := Route{Pattern: "/admin/*", Policy: Authenticated}
	assert.True(t, wildcard.match("/admin"))
	assert.True(t, wildcard.match("/admin/users"))
	assert.True(t, wildcard.match("/admin/users/42"))
	assert.False(t, wildcard.match("/administrator"))

	exact := Route{Pattern: "/login", Policy: PublicOnly}
	assert.True(t, exact.match("/login"))
	assert.False(t, exact.match("/login/extra"))
}

// Cold start with a valid stored session: bootstrap loads it and a guarded
// deep link renders without a redirect hop.
func TestGuard_coldStartScenarios(t *testing.T) {
	// stored session present
	st := authedState()
	st.Initialising = false
	guard := NewGuard()
	assert.Equal(t, Decision{Outcome: Render}, guard.Decide(st, "/admin"))

	// no stored session: /admin bounces to /login, which then renders
	dec := guard.Decide(anonState(), "/admin")
	assert.Equal(t, RedirectLogin, dec.Outcome)
	assert.Equal(t, Decision{Outcome: Render}, guard.Decide(anonState(), dec.Target))
}
