package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bom/internal/roles"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, p *shared.Principal) int {
	t.Helper()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestRequireAny(t *testing.T) {
	m := Middleware{}
	update := m.RequireAny(roles.ItemsUpdate)

	require.Equal(t, http.StatusUnauthorized, serve(t, update, nil))
	require.Equal(t, http.StatusForbidden, serve(t, update, &shared.Principal{UserID: "r", Roles: []string{roles.Readonly}}))
	require.Equal(t, http.StatusOK, serve(t, update, &shared.Principal{UserID: "s", Roles: []string{roles.Staff}}))
	require.Equal(t, http.StatusOK, serve(t, m.RequireAny(), &shared.Principal{UserID: "x"}))
}

func TestRequireAll(t *testing.T) {
	m := Middleware{}
	mw := m.RequireAll(roles.ItemsUpdate, " ITEMS:DELETE ")

	require.Equal(t, http.StatusForbidden, serve(t, mw, &shared.Principal{UserID: "s", Roles: []string{roles.Staff}}))
	require.Equal(t, http.StatusOK, serve(t, mw, &shared.Principal{UserID: "m", Roles: []string{roles.Manager}}))
}
