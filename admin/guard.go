// Package admin holds the view models behind the admin pages: the route
// guard, the post editor page and the post listing.
package admin

import "folio/domain"

type GuardState int

const (
	Checking GuardState = iota
	Unauthenticated
	Forbidden
	Authorized
)

func (s GuardState) String() string {
	switch s {
	case Checking:
		return "checking"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Authorized:
		return "authorized"
	}
	return "unknown"
}

// Guard decides what an admin route shows. It starts in Checking and settles
// once the session lookup has finished; nothing is carried between requests.
type Guard struct {
	state   GuardState
	session domain.Session
}

func NewGuard() *Guard {
	return &Guard{state: Checking}
}

// Resolve settles the guard. A nil session means nobody is signed in.
func (g *Guard) Resolve(sess *domain.Session) GuardState {
	switch {
	case sess == nil || sess.UserID == "":
		g.state, g.session = Unauthenticated, domain.Session{}
	case !sess.IsAdmin():
		g.state, g.session = Forbidden, *sess
	default:
		g.state, g.session = Authorized, *sess
	}
	return g.state
}

func (g *Guard) State() GuardState {
	return g.state
}

// Session is the caller once resolved, shown on the access denied page.
func (g *Guard) Session() domain.Session {
	return g.session
}
