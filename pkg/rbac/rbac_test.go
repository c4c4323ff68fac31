package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlane/storefront/pkg/middleware"
)

func staticResolver(roles map[string]string) RoleResolver {
	return func(_ context.Context, uid string) (string, error) {
		role, ok := roles[uid]
		if !ok {
			return "", ErrUnknownUser
		}
		return role, nil
	}
}

func TestCanDefaultGrants(t *testing.T) {
	a := New(staticResolver(map[string]string{
		"admin-1": "admin",
		"user-1":  "customer",
	}))

	allowed, err := a.Can(context.Background(), "admin-1", PermAnalyticsRead)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = a.Can(context.Background(), "user-1", PermAnalyticsRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanUnknownUser(t *testing.T) {
	a := New(staticResolver(nil))

	_, err := a.Can(context.Background(), "ghost", PermAnalyticsRead)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestGrantExtendsTable(t *testing.T) {
	a := New(staticResolver(map[string]string{"ops-1": "support"}))
	a.Grant("support", PermAnalyticsRead)

	allowed, err := a.Can(context.Background(), "ops-1", PermAnalyticsRead)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func guardedRequest(t *testing.T, a *Authorizer, uid string) *httptest.ResponseRecorder {
	t.Helper()

	handler := a.RequirePermission(PermAnalyticsRead)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
	if uid != "" {
		req = req.WithContext(middleware.WithUID(req.Context(), uid))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequirePermissionStatusCodes(t *testing.T) {
	a := New(staticResolver(map[string]string{
		"admin-1": "admin",
		"user-1":  "customer",
	}))

	assert.Equal(t, http.StatusOK, guardedRequest(t, a, "admin-1").Code)
	assert.Equal(t, http.StatusForbidden, guardedRequest(t, a, "user-1").Code)
	assert.Equal(t, http.StatusForbidden, guardedRequest(t, a, "ghost").Code)
	assert.Equal(t, http.StatusForbidden, guardedRequest(t, a, "").Code) // no uid in context
}

func TestRequirePermissionResolverFailure(t *testing.T) {
	a := New(func(context.Context, string) (string, error) {
		return "", errors.New("store unavailable")
	})

	rec := guardedRequest(t, a, "admin-1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
