package auth

import (
	"context"

	"github.com/isdelr/eventreg-be/internal/models"
)

// Capability is what an operation requires of its caller.
type Capability int

const (
	CapabilityPublic Capability = iota
	CapabilityAuthenticated
	CapabilityAdministrator
)

func (c Capability) String() string {
	switch c {
	case CapabilityPublic:
		return "public"
	case CapabilityAuthenticated:
		return "authenticated"
	case CapabilityAdministrator:
		return "administrator"
	default:
		return "unknown"
	}
}

// Outcome is the result of a capability check.
type Outcome int

const (
	Allowed Outcome = iota
	RedirectToLogin
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case RedirectToLogin:
		return "redirect_to_login"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Principal is the authenticated caller of a request.
type Principal struct {
	User models.User
}

// IsAdmin reports whether the principal holds the administrator role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.User.IsAdmin
}

// Check decides whether p may perform an operation requiring c.
// A nil principal is an anonymous caller.
func Check(p *Principal, c Capability) Outcome {
	switch c {
	case CapabilityPublic:
		return Allowed
	case CapabilityAuthenticated:
		if p == nil {
			return RedirectToLogin
		}
		return Allowed
	case CapabilityAdministrator:
		if p == nil {
			return RedirectToLogin
		}
		if !p.IsAdmin() {
			return Forbidden
		}
		return Allowed
	default:
		return Forbidden
	}
}

type contextKey string

const principalKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the request's principal, or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
