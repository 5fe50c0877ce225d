package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/retailpro/retailpro/internal/access"
	"github.com/retailpro/retailpro/internal/auth"
	"github.com/retailpro/retailpro/internal/inventory"
	"github.com/retailpro/retailpro/internal/media"
	"github.com/retailpro/retailpro/internal/reporting"
	"github.com/retailpro/retailpro/internal/sales"
	"github.com/retailpro/retailpro/internal/shared"
	"github.com/retailpro/retailpro/jobs"
	"github.com/retailpro/retailpro/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Guard          access.Guard

	AuthHandler      *auth.Handler
	InventoryHandler *inventory.Handler
	ClientHandler    *inventory.ClientHandler
	SalesHandler     *sales.Handler
	ReportHandler    *reporting.Handler
	MediaHandler     *media.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with RetailPro defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The root redirects by session state: signed-out visitors land on the
	// login page, signed-in users on their role's home.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Owner pages.
	r.Group(func(r chi.Router) {
		r.Use(params.Guard.RequireRole(auth.RoleOwner))
		if params.ReportHandler != nil {
			params.ReportHandler.MountRoutes(r)
		}
		if params.InventoryHandler != nil {
			r.Route("/inventory", func(r chi.Router) {
				params.InventoryHandler.MountRoutes(r)
				if params.MediaHandler != nil {
					params.MediaHandler.MountRoutes(r)
				}
			})
		}
		if params.SalesHandler != nil {
			r.Route("/sales", params.SalesHandler.MountRoutes)
		}
	})

	// Client pages.
	if params.ClientHandler != nil {
		r.Route("/client", func(r chi.Router) {
			r.Use(params.Guard.RequireRole(auth.RoleClient))
			params.ClientHandler.MountRoutes(r)
		})
	}

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
