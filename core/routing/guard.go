package routing

import (
	"strings"

	"github.com/darasahq/darasa/core/session"
)

// Policy is the access condition attached to a route.
type Policy int

const (
	// Public routes always render.
	Public Policy = iota
	// PublicOnly routes render only without a session; an authenticated
	// visitor is sent to the default authenticated landing.
	PublicOnly
	// Authenticated routes render only with a session; anonymous visitors
	// are sent to the login page.
	Authenticated
)

// Outcome is a route access decision.
type Outcome int

const (
	// Render the requested content.
	Render Outcome = iota
	// Suspend renders nothing: the session bootstrap has not completed yet
	// and redirecting now could bounce an authenticated user to login.
	Suspend
	// RedirectLogin sends the visitor to the login page.
	RedirectLogin
	// RedirectHome sends the visitor to the authenticated landing.
	RedirectHome
)

type Decision struct {
	Outcome Outcome
	// Target is the redirect destination for redirect outcomes, "" otherwise.
	Target string
}

// Route binds a path pattern to an access policy. A pattern ending in "/*"
// matches the prefix itself and everything below it.
type Route struct {
	Pattern string
	Policy  Policy
}

func (r Route) match(path string) bool {
	if prefix := strings.TrimSuffix(r.Pattern, "/*"); prefix != r.Pattern {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

const (
	LoginPath = "/login"
	HomePath  = "/admin"
)

// DefaultRoutes is the admin panel route table. No route requires a specific
// role beyond "authenticated"; role differentiation happens in page content
// (see identity.NavItems).
var DefaultRoutes = []Route{
	{Pattern: LoginPath, Policy: PublicOnly},
	{Pattern: "/signup", Policy: PublicOnly},
	{Pattern: "/admin/*", Policy: Authenticated},
	{Pattern: "/user/*", Policy: Authenticated},
	{Pattern: "/viewer/*", Policy: Authenticated},
}

// Guard evaluates route access against the current session state.
type Guard struct {
	routes []Route
}

func NewGuard(routes ...Route) *Guard {
	if len(routes) == 0 {
		routes = DefaultRoutes
	}
	return &Guard{routes: routes}
}

// PolicyFor returns the policy of the first matching route.
// Unmatched paths are public; the page layer decides what to show.
func (g *Guard) PolicyFor(path string) Policy {
	for _, r := range g.routes {
		if r.match(path) {
			return r.Policy
		}
	}
	return Public
}

// Decide evaluates the access policy of path against a session snapshot.
//
// The Suspend outcome is the load-bearing case: on a cold start the in-memory
// session is empty until the credential store read resolves, and redirecting
// during that window would bounce an authenticated user to the login page on
// every hard reload.
func (g *Guard) Decide(st session.State, path string) Decision {
	if path == "/" {
		// bare root always forwards to login; its PublicOnly policy then
		// bounces authenticated visitors on to the landing page
		return Decision{Outcome: RedirectLogin, Target: LoginPath}
	}

	policy := g.PolicyFor(path)
	if policy == Public {
		return Decision{Outcome: Render}
	}
	if st.Initialising {
		return Decision{Outcome: Suspend}
	}

	switch policy {
	case Authenticated:
		if st.Authenticated() {
			return Decision{Outcome: Render}
		}
		return Decision{Outcome: RedirectLogin, Target: LoginPath}
	default: // PublicOnly
		if st.Authenticated() {
			return Decision{Outcome: RedirectHome, Target: HomePath}
		}
		return Decision{Outcome: Render}
	}
}
