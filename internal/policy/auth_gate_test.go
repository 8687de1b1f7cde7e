package policy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/go-adopt/auth"
	"github.com/diewo77/go-adopt/gate"
	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type animal struct {
	ID     string
	UserID string
}

func (a *animal) ref() any { return &permissions.AnimalRef{ID: a.ID, UserID: a.UserID} }

func newTestGate(t *testing.T, opts ...Option) *AuthGate {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	engine, err := permissions.NewResolver(logger)
	require.NoError(t, err)

	subjects := NewStaticResolver()
	subjects.Set(&Subject{UserID: "donor", Role: permissions.RoleDonor, Params: permissions.SubjectParams{UserID: "donor"}})
	subjects.Set(&Subject{UserID: "adopter", Role: permissions.RoleAdopter, Params: permissions.SubjectParams{UserID: "adopter"}})
	subjects.Set(&Subject{UserID: "admin", Role: permissions.RoleAdmin})
	subjects.Set(&Subject{UserID: "weird", Role: "superuser", Params: permissions.SubjectParams{UserID: "weird"}})
	return NewAuthGate(subjects, engine, append([]Option{WithLogger(logger)}, opts...)...)
}

func request(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	return req
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAttach(t *testing.T) {
	g := newTestGate(t)
	var got *gate.Checker
	h := g.Attach(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CheckerFromContext(r.Context())
	}))

	serve(h, request(http.MethodGet, "/", "donor"))
	require.NotNil(t, got)
	assert.Equal(t, permissions.RoleDonor, got.Role())

	got = nil
	serve(h, request(http.MethodGet, "/", ""))
	assert.Nil(t, got, "anonymous requests get no checker")

	serve(h, request(http.MethodGet, "/", "nobody"))
	assert.Nil(t, got, "users without role metadata get no checker")

	serve(h, request(http.MethodGet, "/", "weird"))
	require.NotNil(t, got)
	assert.Equal(t, permissions.RoleAdopter, got.Role(), "unknown roles fall back to adopter")
}

type failingResolver struct{ err error }

func (f failingResolver) Resolve(context.Context, string) (*Subject, error) { return nil, f.err }

func TestAttach_ResolverError(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	engine, err := permissions.NewResolver(logger)
	require.NoError(t, err)
	g := NewAuthGate(failingResolver{err: errors.New("connection refused")}, engine, WithLogger(logger))

	called := false
	h := g.Attach(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := serve(h, request(http.MethodGet, "/", "donor"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"db_error"}`, rec.Body.String())
	assert.False(t, called, "an outage is not turned into a permission denial")

	serve(h, request(http.MethodGet, "/", ""))
	assert.True(t, called, "anonymous requests skip the lookup")
}

func TestRequire(t *testing.T) {
	g := newTestGate(t)
	h := g.Attach(g.Require(permissions.Animals, gate.ActionCreate)(http.HandlerFunc(ok)))

	assert.Equal(t, http.StatusNoContent, serve(h, request(http.MethodPost, "/", "donor")).Code)

	rec := serve(h, request(http.MethodPost, "/", "adopter"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden","message":"permission denied for create on animals"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(h, request(http.MethodPost, "/", "")).Code)
	assert.Equal(t, http.StatusForbidden, serve(h, request(http.MethodPost, "/", "nobody")).Code)
}

func TestRequireInstance(t *testing.T) {
	var decisions []gate.Decision
	g := newTestGate(t, WithDecisionHook(func(d gate.Decision) { decisions = append(decisions, d) }))
	rows := map[string]*animal{"a1": {ID: "a1", UserID: "donor"}, "a2": {ID: "a2", UserID: "someone"}}
	get := func(_ context.Context, id string) (*animal, error) {
		if id == "boom" {
			return nil, errors.New("db down")
		}
		if a, ok := rows[id]; ok {
			return a, nil
		}
		return nil, services.ErrNotFound
	}

	var seen *animal
	mux := http.NewServeMux()
	mux.Handle("PATCH /animals/{id}", g.RequireInstance(permissions.Animals, gate.ActionUpdate, LoadByID(get, (*animal).ref))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = Instance[animal](r.Context())
			w.WriteHeader(http.StatusNoContent)
		})))
	h := g.Attach(mux)

	assert.Equal(t, http.StatusNoContent, serve(h, request(http.MethodPatch, "/animals/a1", "donor")).Code)
	require.NotNil(t, seen)
	assert.Equal(t, "a1", seen.ID)

	assert.Equal(t, http.StatusForbidden, serve(h, request(http.MethodPatch, "/animals/a2", "donor")).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, request(http.MethodPatch, "/animals/zz", "donor")).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(h, request(http.MethodPatch, "/animals/boom", "donor")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, request(http.MethodPatch, "/animals/a1", "")).Code)
	assert.Equal(t, http.StatusNoContent, serve(h, request(http.MethodPatch, "/animals/a2", "admin")).Code)

	require.NotEmpty(t, decisions)
	assert.True(t, decisions[0].HasInstance)
	assert.True(t, decisions[0].Dynamic)
}

func TestRequireRole(t *testing.T) {
	g := newTestGate(t)
	h := g.Attach(g.RequireRole(permissions.RoleAdmin)(http.HandlerFunc(ok)))

	assert.Equal(t, http.StatusNoContent, serve(h, request(http.MethodPut, "/", "admin")).Code)
	assert.Equal(t, http.StatusForbidden, serve(h, request(http.MethodPut, "/", "donor")).Code)
	assert.Equal(t, http.StatusForbidden, serve(h, request(http.MethodPut, "/", "weird")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, request(http.MethodPut, "/", "")).Code)
}

func TestAuthorize(t *testing.T) {
	g := newTestGate(t)
	var donorErr, adopterErr, anonErr error
	var can bool
	h := g.Attach(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := auth.UserIDFromContext(r.Context())
		err := g.Authorize(r.Context(), permissions.AdoptionRequests, gate.ActionCreate, nil)
		switch uid {
		case "donor":
			donorErr = err
		case "adopter":
			adopterErr = err
			can = g.Can(r.Context(), permissions.AdoptionRequests, gate.ActionCreate, nil)
		default:
			anonErr = err
		}
	}))

	serve(h, request(http.MethodGet, "/", "donor"))
	serve(h, request(http.MethodGet, "/", "adopter"))
	serve(h, request(http.MethodGet, "/", ""))

	assert.ErrorIs(t, donorErr, gate.ErrDenied)
	assert.NoError(t, adopterErr)
	assert.True(t, can)
	assert.ErrorIs(t, anonErr, ErrUnauthenticated)
}
