package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/sponsorship-studio/engine/internal/api/handlers"
	mw "github.com/sponsorship-studio/engine/internal/api/middleware"
	"github.com/sponsorship-studio/engine/internal/guard"
	"github.com/sponsorship-studio/engine/internal/identity"
	"github.com/sponsorship-studio/engine/internal/models"
	"github.com/sponsorship-studio/engine/internal/store"
)

type Dependencies struct {
	SessionSecret  []byte
	SessionTTL     time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	StaticDir      string

	Provider *identity.Provider
	Store    store.EntityStore
	Guard    *guard.Guard
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	if dep.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
	}
	r.Use(chimid.Compress(5))

	hh := handlers.NewHealthHandler(func(ctx context.Context) error {
		_, err := dep.Store.ListProjects(ctx)
		return err
	})
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	ah := handlers.NewAuthHandler()
	zh := handlers.NewAuthorizeHandler(dep.Guard)
	ph := handlers.NewProjectsHandler(dep.Store)
	plh := handlers.NewPledgesHandler(dep.Store)

	r.Group(func(sr chi.Router) {
		sr.Use(mw.Session(dep.Provider, dep.SessionSecret, dep.SessionTTL))

		sr.Route("/api/v1", func(api chi.Router) {
			api.Route("/auth", func(ar chi.Router) {
				ar.Post("/register", ah.Register)
				ar.Post("/login", ah.Login)
				ar.Post("/logout", ah.Logout)
				ar.Get("/me", ah.Me)
			})
			api.Get("/authorize", zh.Check)

			api.Route("/projects", func(pr chi.Router) {
				pr.Get("/", ph.List)
				pr.Get("/{id}", ph.Get)
				pr.Get("/{id}/pledges", plh.ListForProject)

				pr.With(mw.RequireRole(models.RoleStartup, models.RoleAdmin)).Post("/", ph.Create)
				pr.With(mw.RequireRole(models.RoleStartup, models.RoleAdmin)).Patch("/{id}", ph.Update)
				pr.With(mw.RequireRole(models.RoleStartup, models.RoleAdmin)).Post("/{id}/updates", ph.AddUpdate)
				pr.With(mw.RequireRole(models.RoleSponsor, models.RoleAdmin)).Post("/{id}/pledges", plh.Create)
				pr.With(mw.RequireRole()).Post("/{id}/messages", ph.AddMessage)
			})
			api.With(mw.RequireRole(models.RoleSponsor, models.RoleAdmin)).Get("/pledges", plh.List)
		})

		pages := handlers.NewPagesHandler(dep.StaticDir)
		sr.With(mw.Guard(dep.Guard)).Get("/*", pages.Serve)
	})

	return r
}
