// Package server assembles the HTTP routes and the middleware chain.
package server

import (
	"net/http"

	"github.com/diewo77/go-adopt/auth"
	"github.com/diewo77/go-adopt/gate"
	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/db"
	"github.com/diewo77/go-adopt/internal/handlers"
	"github.com/diewo77/go-adopt/internal/observability"
	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/diewo77/go-adopt/internal/policy"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Gate   *policy.AuthGate

	// Subjects is told about role and shelter membership changes.
	Subjects policy.Invalidator

	// Metrics is optional; nil disables /metrics and request metrics.
	Metrics *observability.Metrics

	// CORSOrigins enables CORS for browser clients on other origins.
	CORSOrigins []string
}

// App is the root handler.
type App struct {
	mux     *http.ServeMux
	deps    Deps
	handler http.Handler
}

// NewApp registers every route and wraps the mux in the middleware chain.
func NewApp(d Deps) *App {
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	a := &App{mux: http.NewServeMux(), deps: d}
	a.setupRoutes()

	var h http.Handler = a.mux
	if d.Metrics != nil {
		// innermost so the matched pattern is visible after the mux ran
		h = observability.HTTPMetricsMiddleware(d.Metrics)(h)
	}
	h = d.Gate.Attach(h)
	h = auth.Middleware(h)
	h = withTiming(h)
	h = withRecover(h)
	if len(d.CORSOrigins) > 0 {
		h = cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Server-Timing", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		})(h)
	}
	a.handler = withLogging(d.Logger)(h)
	return a
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	m, g := a.mux, a.deps.Gate

	users := services.NewUserService(a.deps.DB)
	animalSvc := services.NewAnimalService(a.deps.DB)
	requestSvc := services.NewAdoptionRequestService(a.deps.DB)
	shelterSvc := services.NewShelterService(a.deps.DB)
	managerSvc := services.NewShelterManagerService(a.deps.DB)

	// Health
	m.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	m.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(a.deps.DB.WithContext(r.Context())); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.deps.Metrics != nil {
		m.Handle("GET /metrics", a.deps.Metrics.Handler())
	}

	// Auth
	ah := handlers.NewAuthHandler(users)
	m.HandleFunc("POST /api/auth/signup", ah.Signup)
	m.HandleFunc("POST /api/auth/login", ah.Login)
	m.HandleFunc("POST /api/auth/logout", ah.Logout)
	m.Handle("GET /api/auth/me", auth.RequireAuth(http.HandlerFunc(ah.Me)))
	m.Handle("GET /api/me/permissions", auth.RequireAuth(http.HandlerFunc(handlers.MyPermissions)))

	// Animals
	an := handlers.NewAnimalHandler(animalSvc, g)
	loadAnimal := handlers.LoadAnimal(animalSvc)
	m.HandleFunc("GET /api/animals", an.List)
	m.HandleFunc("GET /api/animals/public", an.ListPublic)
	m.HandleFunc("GET /api/animals/{id}", an.Get)
	m.Handle("POST /api/animals",
		g.Require(permissions.Animals, gate.ActionCreate)(http.HandlerFunc(an.Create)))
	m.Handle("PATCH /api/animals/{id}",
		g.RequireInstance(permissions.Animals, gate.ActionUpdate, loadAnimal)(http.HandlerFunc(an.Update)))
	m.Handle("DELETE /api/animals/{id}",
		g.RequireInstance(permissions.Animals, gate.ActionDelete, loadAnimal)(http.HandlerFunc(an.Delete)))

	// Adoption requests
	rh := handlers.NewAdoptionRequestHandler(requestSvc, animalSvc, g)
	loadRequest := handlers.LoadAdoptionRequest(requestSvc)
	m.Handle("GET /api/adoption-requests", auth.RequireAuth(http.HandlerFunc(rh.List)))
	m.Handle("GET /api/adoption-requests/{id}",
		g.RequireInstance(permissions.AdoptionRequests, gate.ActionRead, loadRequest)(http.HandlerFunc(rh.Get)))
	m.Handle("POST /api/adoption-requests",
		g.Require(permissions.AdoptionRequests, gate.ActionCreate)(http.HandlerFunc(rh.Create)))
	m.Handle("PATCH /api/adoption-requests/{id}",
		g.RequireInstance(permissions.AdoptionRequests, gate.ActionUpdate, loadRequest)(http.HandlerFunc(rh.Update)))
	m.Handle("DELETE /api/adoption-requests/{id}",
		g.RequireInstance(permissions.AdoptionRequests, gate.ActionDelete, loadRequest)(http.HandlerFunc(rh.Delete)))

	// Shelters
	sh := handlers.NewShelterHandler(shelterSvc, managerSvc, a.deps.Subjects)
	loadShelter := handlers.LoadShelter(shelterSvc)
	canUpdateShelter := g.RequireInstance(permissions.Shelters, gate.ActionUpdate, loadShelter)
	m.HandleFunc("GET /api/shelters", sh.List)
	m.HandleFunc("GET /api/shelters/{id}", sh.Get)
	m.Handle("POST /api/shelters",
		g.Require(permissions.Shelters, gate.ActionCreate)(http.HandlerFunc(sh.Create)))
	m.Handle("PATCH /api/shelters/{id}", canUpdateShelter(http.HandlerFunc(sh.Update)))
	m.Handle("DELETE /api/shelters/{id}",
		g.RequireInstance(permissions.Shelters, gate.ActionDelete, loadShelter)(http.HandlerFunc(sh.Delete)))

	// Shelter managers
	mh := handlers.NewShelterManagerHandler(managerSvc, users, a.deps.Subjects)
	m.Handle("GET /api/shelters/{id}/managers", canUpdateShelter(http.HandlerFunc(mh.List)))
	m.Handle("POST /api/shelters/{id}/managers", canUpdateShelter(http.HandlerFunc(mh.Add)))
	m.Handle("DELETE /api/shelters/{id}/managers/{userId}", canUpdateShelter(http.HandlerFunc(mh.Remove)))

	// Admin
	uh := handlers.NewAdminUserHandler(users, a.deps.Subjects)
	m.Handle("PUT /api/admin/users/{id}/role",
		g.RequireRole(permissions.RoleAdmin)(http.HandlerFunc(uh.SetRole)))

	m.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
	})
}
