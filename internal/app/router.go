package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-bom/internal/audit"
	"github.com/odyssey-erp/odyssey-bom/internal/bom"
	"github.com/odyssey-erp/odyssey-bom/internal/items"
	"github.com/odyssey-erp/odyssey-bom/internal/observability"
	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bom/internal/roles"
	"github.com/odyssey-erp/odyssey-bom/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	Authenticate func(http.Handler) http.Handler
	ItemsHandler *items.Handler
	BOMHandler   *bom.Handler
	AuditHandler *audit.Handler
	RolesHandler *roles.Handler
	JobHandler   *jobs.Handler
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router with engine defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountHealth)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if params.Authenticate != nil {
			r.Use(params.Authenticate)
		}
		r.Route("/items", func(r chi.Router) {
			if params.BOMHandler != nil {
				params.BOMHandler.MountRoutes(r)
			}
			if params.AuditHandler != nil {
				params.AuditHandler.MountRoutes(r)
			}
			if params.ItemsHandler != nil {
				params.ItemsHandler.MountRoutes(r)
			}
		})
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path, "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" not allowed on "+r.URL.Path, "method_not_allowed")
	})

	return r
}
