package policy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/diewo77/go-adopt/auth"
	"github.com/diewo77/go-adopt/gate"
	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/logging"
	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/sirupsen/logrus"
)

// ErrUnauthenticated is returned by Authorize when no user is attached.
var ErrUnauthenticated = errors.New("unauthenticated")

// Loader fetches the row a request targets. It returns the record handed to
// the handler and the projection the rules inspect. A missing row must be
// reported as services.ErrNotFound.
type Loader func(r *http.Request) (record any, instance any, err error)

// LoadByID builds a Loader reading the {id} path value.
func LoadByID[T any](get func(ctx context.Context, id string) (*T, error), project func(*T) any) Loader {
	return func(r *http.Request) (any, any, error) {
		row, err := get(r.Context(), r.PathValue("id"))
		if err != nil {
			return nil, nil, err
		}
		return row, project(row), nil
	}
}

// Option configures an AuthGate.
type Option func(*AuthGate)

// WithLogger sets the fallback logger used outside a request entry.
func WithLogger(l logrus.FieldLogger) Option {
	return func(g *AuthGate) { g.logger = l }
}

// WithDecisionHook forwards every permission decision to fn.
func WithDecisionHook(fn func(gate.Decision)) Option {
	return func(g *AuthGate) { g.hook = fn }
}

// AuthGate attaches a permission checker to each request and guards routes.
type AuthGate struct {
	subjects SubjectResolver
	engine   *gate.Resolver[permissions.SubjectParams]
	logger   logrus.FieldLogger
	hook     func(gate.Decision)
}

// NewAuthGate creates the gate. subjects is usually a CachedResolver.
func NewAuthGate(subjects SubjectResolver, engine *gate.Resolver[permissions.SubjectParams], opts ...Option) *AuthGate {
	g := &AuthGate{subjects: subjects, engine: engine, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Attach builds the checker once per request for the authenticated user.
// Anonymous requests and users without role metadata pass through without
// a checker; guarded routes then deny. A failed subject lookup answers 500.
func (g *AuthGate) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := logging.AddField(r.Context(), "user_id", uid)
		log := logging.FromContext(ctx)

		subject, err := g.subjects.Resolve(ctx, uid)
		if err != nil {
			log.WithError(err).Error("subject resolution failed")
			httpx.JSONError(w, http.StatusInternalServerError, httpx.CodeDBError, nil)
			return
		}
		if subject == nil {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		set, err := g.engine.Resolve(subject.Role, subject.Params)
		if err != nil {
			log.WithError(err).WithField("role", subject.Role).Error("policy resolution failed")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		ctx = logging.AddField(ctx, "role", set.Role())
		opts := []gate.CheckerOption{gate.WithLogger(logging.FromContext(ctx))}
		if g.hook != nil {
			opts = append(opts, gate.WithDecisionHook(g.hook))
		}
		ctx = WithChecker(ctx, subject, gate.NewChecker(set, opts...))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize checks the pair for the request's subject.
func (g *AuthGate) Authorize(ctx context.Context, rt gate.ResourceType, a gate.Action, instance any) error {
	if _, ok := auth.UserIDFromContext(ctx); !ok {
		return ErrUnauthenticated
	}
	c, ok := CheckerFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no role for subject", gate.ErrDenied)
	}
	return c.Authorize(rt, a, instance)
}

// Can is Authorize returning a bool.
func (g *AuthGate) Can(ctx context.Context, rt gate.ResourceType, a gate.Action, instance any) bool {
	return g.Authorize(ctx, rt, a, instance) == nil
}

// Require guards a route with a check made without an instance.
func (g *AuthGate) Require(rt gate.ResourceType, a gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Authorize(r.Context(), rt, a, nil); err != nil {
				WriteAuthzError(w, err, rt, a)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireInstance loads the targeted row and checks the pair against it.
// The handler reads the record back with Instance.
func (g *AuthGate) RequireInstance(rt gate.ResourceType, a gate.Action, load Loader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserIDFromContext(r.Context()); !ok {
				WriteAuthzError(w, ErrUnauthenticated, rt, a)
				return
			}
			record, instance, err := load(r)
			if errors.Is(err, services.ErrNotFound) {
				httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
				return
			}
			if err != nil {
				logging.FromContext(r.Context()).WithError(err).Error("failed to load guarded resource")
				httpx.JSONError(w, http.StatusInternalServerError, httpx.CodeDBError, nil)
				return
			}
			if err := g.Authorize(r.Context(), rt, a, instance); err != nil {
				WriteAuthzError(w, err, rt, a)
				return
			}
			next.ServeHTTP(w, r.WithContext(withInstance(r.Context(), record)))
		})
	}
}

// RequireRole allows only subjects whose resolved role is one of roles.
// Unknown role names resolve to the fallback first, so they never match
// a privileged role.
func (g *AuthGate) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserIDFromContext(r.Context()); !ok {
				httpx.JSONError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, nil)
				return
			}
			c, ok := CheckerFromContext(r.Context())
			if !ok || !slices.Contains(roles, c.Role()) {
				httpx.Forbidden(w, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteAuthzError writes the response for an Authorize failure.
func WriteAuthzError(w http.ResponseWriter, err error, rt gate.ResourceType, a gate.Action) {
	if errors.Is(err, ErrUnauthenticated) {
		httpx.JSONError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, nil)
		return
	}
	httpx.Forbidden(w, fmt.Sprintf("permission denied for %s on %s", a, rt))
}
