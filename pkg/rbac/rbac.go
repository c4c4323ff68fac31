// Package rbac maps roles to permissions and guards routes by permission.
//
// Handlers never compare role strings: they declare the permission they
// need, and the role → permission table decides. Adding a role or granting
// an existing permission to a new role is a table edit only.
package rbac

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/marketlane/storefront/pkg/middleware"
	"github.com/marketlane/storefront/pkg/response"
)

// Permissions used by the service.
const (
	PermAnalyticsRead = "analytics:read"
)

// ErrUnknownUser is returned by a RoleResolver when the uid has no user
// record. It denies access with a 403 rather than a 500.
var ErrUnknownUser = errors.New("rbac: unknown user")

// RoleResolver returns the role for a uid, typically by reading the user
// document. Return ErrUnknownUser when no record exists.
type RoleResolver func(ctx context.Context, uid string) (string, error)

// Authorizer decides whether a uid holds a permission.
type Authorizer struct {
	mu      sync.RWMutex
	grants  map[string]map[string]bool // role → permission set
	resolve RoleResolver
}

// New builds an Authorizer with the default grant table.
func New(resolve RoleResolver) *Authorizer {
	a := &Authorizer{
		grants:  map[string]map[string]bool{},
		resolve: resolve,
	}
	a.Grant("admin", PermAnalyticsRead)
	return a
}

// Grant gives a role one or more permissions.
func (a *Authorizer) Grant(role string, perms ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	set := a.grants[role]
	if set == nil {
		set = map[string]bool{}
		a.grants[role] = set
	}
	for _, p := range perms {
		set[p] = true
	}
}

// Can reports whether uid holds perm. Unknown users and unknown roles are
// denied; resolver failures other than "not found" surface as errors.
func (a *Authorizer) Can(ctx context.Context, uid, perm string) (bool, error) {
	role, err := a.resolve(ctx, uid)
	if err != nil {
		return false, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.grants[role][perm], nil
}

// RequirePermission returns middleware that allows only callers holding
// perm. Requires middleware.Authenticate to have run (uid in context).
// Callers with no user record or the wrong role get a 403 before the
// handler runs.
func (a *Authorizer) RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := middleware.UIDFromCtx(r)
			if !ok {
				response.Forbidden(w, "forbidden")
				return
			}

			allowed, err := a.Can(r.Context(), uid, perm)
			switch {
			case errors.Is(err, ErrUnknownUser):
				response.Forbidden(w, "forbidden")
				return
			case err != nil:
				response.Internal(w, err)
				return
			case !allowed:
				response.Forbidden(w, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
