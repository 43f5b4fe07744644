package entitlement

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/diatonic-ai/workbench/internal/catalog"
	"github.com/diatonic-ai/workbench/internal/shared"
	"github.com/diatonic-ai/workbench/internal/users"
)

type stubLoader struct {
	users map[string]users.User
}

func (s *stubLoader) GetUser(ctx context.Context, id string) (users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func newTestHandler(t *testing.T) (*Handler, *stubLoader) {
	t.Helper()
	cat, err := catalog.Load(catalog.Default())
	require.NoError(t, err)
	loader := &stubLoader{users: map[string]users.User{
		"u1": {ID: "u1", RoleID: catalog.RoleBasic, IsActive: true},
		"u2": {ID: "u2", RoleID: catalog.RoleFree, IsActive: true,
			Overrides: []users.Override{{PermissionID: shared.PermStudioCreateAgents, Kind: users.OverrideGrant}}},
	}}
	resolver := NewResolver(cat, slog.Default(), nil)
	return NewHandler(slog.Default(), resolver, loader), loader
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func mountTestRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1/entitlements", h.MountRoutes)
	return r
}

func TestCheckEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountTestRoutes(h)

	rec := postJSON(t, router, "/v1/entitlements/check",
		`{"user_id":"u1","permission":"studio.create_agents"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp checkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Granted)

	// Denied is a normal 200, never an error status.
	rec = postJSON(t, router, "/v1/entitlements/check",
		`{"user_id":"u1","permission":"lab.run_advanced_experiments"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Granted)
}

func TestCheckUnknownUserIs404(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountTestRoutes(h)

	rec := postJSON(t, router, "/v1/entitlements/check",
		`{"user_id":"ghost","permission":"studio.create_agents"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckRejectsMissingFields(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountTestRoutes(h)

	rec := postJSON(t, router, "/v1/entitlements/check", `{"user_id":"u1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckBatchEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountTestRoutes(h)

	rec := postJSON(t, router, "/v1/entitlements/check-batch",
		`{"user_id":"u2","permissions":["studio.create_agents","lab.run_experiments"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp checkBatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Results["studio.create_agents"])
	require.False(t, resp.Results["lab.run_experiments"])
}

func TestEffectiveEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountTestRoutes(h)

	req := httptest.NewRequest(http.MethodGet, "/v1/entitlements/effective?user_id=u2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp effectiveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "u2", resp.UserID)
	require.Contains(t, resp.Permissions, shared.PermStudioCreateAgents)
	require.Contains(t, resp.Permissions, shared.PermCoreUsePlatform)

	req = httptest.NewRequest(http.MethodGet, "/v1/entitlements/effective", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireAnyMiddleware(t *testing.T) {
	cat, err := catalog.Load(catalog.Default())
	require.NoError(t, err)
	loader := &stubLoader{users: map[string]users.User{
		"basic":    {ID: "basic", RoleID: catalog.RoleBasic, IsActive: true},
		"inactive": {ID: "inactive", RoleID: catalog.RoleAdministrator, IsActive: false},
	}}
	mw := &Middleware{
		Resolver: NewResolver(cat, slog.Default(), nil),
		Loader:   loader,
		Logger:   slog.Default(),
	}

	router := chi.NewRouter()
	router.Use(Subject)
	router.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermStudioCreateAgents))
		r.Get("/studio", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	router.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermStudioCreateAgents, shared.PermLabUseGPUCompute))
		r.Get("/gpu", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	get := func(path, subject string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if subject != "" {
			req.Header.Set(SubjectHeader, subject)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, get("/studio", "basic"))
	require.Equal(t, http.StatusForbidden, get("/gpu", "basic"))
	require.Equal(t, http.StatusForbidden, get("/studio", ""))
	require.Equal(t, http.StatusForbidden, get("/studio", "ghost"))
	require.Equal(t, http.StatusForbidden, get("/studio", "inactive"))
}
