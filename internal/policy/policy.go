// Package policy centralizes the authorization rules. Every protected
// operation goes through one of these checks instead of comparing role
// strings inline in handlers.
package policy

import (
	"github.com/tecnicanomade/riego/internal/apperr"
	"github.com/tecnicanomade/riego/internal/auth"
	"github.com/tecnicanomade/riego/internal/models"
)

// Ownable is implemented by resources scoped to a single client.
type Ownable interface {
	OwnerID() uint
}

// RequireAdmin allows only the admin role.
func RequireAdmin(id auth.Identity) error {
	if id.Role != models.RoleAdmin {
		return apperr.ErrForbidden
	}
	return nil
}

// Authorize grants admins unconditional access and clients access to
// resources they own. Ownership failures are reported as forbidden, never
// as not-found: the resource was already fetched, so it exists.
func Authorize(id auth.Identity, resource Ownable) error {
	if id.Role == models.RoleAdmin {
		return nil
	}
	if resource == nil {
		return apperr.ErrForbidden
	}
	if resource.OwnerID() != id.UserID {
		return apperr.ErrForbidden
	}
	return nil
}
