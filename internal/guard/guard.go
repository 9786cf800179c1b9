// Package guard decides whether the current session may render a
// route. It is a pure decision function: the router collaborator
// performs the actual navigation, the guard only classifies.
//
// Role and ownership checks here are UI gating only. The backend
// independently re-validates role and ownership on every mutating
// call; this package is not a security boundary.
package guard

import (
	"github.com/tekmiz/tekmiz-go/internal/model"
	"github.com/tekmiz/tekmiz-go/internal/session"
)

// Requirement is a route's declared access requirement
type Requirement int

const (
	// RequireNone allows anyone, signed in or not
	RequireNone Requirement = iota
	// RequireAuthenticated allows any signed-in identity
	RequireAuthenticated
	// RequireTeacher allows only signed-in identities with the teacher role
	RequireTeacher
)

func (r Requirement) String() string {
	switch r {
	case RequireNone:
		return "none"
	case RequireAuthenticated:
		return "authenticated"
	case RequireTeacher:
		return "authenticated+teacher"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for a route
type Decision int

const (
	// Allow renders the route
	Allow Decision = iota
	// RedirectToLogin sends the visitor to the login page
	RedirectToLogin
	// RedirectToHome sends an authenticated but under-privileged
	// visitor back home
	RedirectToHome
	// Pending means the startup session check has not resolved yet;
	// render a neutral waiting state, never redirect
	Pending
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToHome:
		return "redirect-to-home"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// Decide maps the session state and a route requirement to a decision.
// Deterministic and side-effect-free; re-evaluated by the caller on
// every navigation and on every session change.
func Decide(state session.State, req Requirement) Decision {
	if state.Initializing {
		return Pending
	}
	if req == RequireNone {
		return Allow
	}
	if !state.Authenticated() {
		return RedirectToLogin
	}
	if req == RequireTeacher && !state.HasRole(model.RoleTeacher) {
		return RedirectToHome
	}
	return Allow
}
