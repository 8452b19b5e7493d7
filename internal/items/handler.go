package items

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bom/internal/rbac"
	"github.com/odyssey-erp/odyssey-bom/internal/roles"
)

// Handler wires HTTP endpoints for the item catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs items handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator(), rbac: rbac}
}

// MountRoutes registers item routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(roles.ItemsRead))
		r.Get("/", h.List)
		r.Get("/classification/schemes", h.Schemes)
		r.Get("/{id}", h.Show)
	})
	r.With(h.rbac.RequireAny(roles.ItemsCreate)).Post("/", h.Create)
	r.With(h.rbac.RequireAny(roles.ItemsUpdate)).Patch("/{id}", h.Update)
	r.With(h.rbac.RequireAny(roles.ItemsDelete)).Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	skip, err := httpx.IntQuery(r, "skip", 0)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit, err := httpx.IntQuery(r, "limit", 0)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	filters := ListFilters{
		Status:   q.Get("status"),
		ItemType: q.Get("item_type"),
		Search:   q.Get("search"),
	}
	filters.Skip, filters.Limit = skip, limit
	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid category_id", "validation_error")
			return
		}
		filters.CategoryID = &id
	}

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.fail(w, r, "list items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items, "count": total})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), req.toItem())
	if err != nil {
		h.fail(w, r, "create item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, req.toPatch())
	if err != nil {
		h.fail(w, r, "update item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Schemes(w http.ResponseWriter, r *http.Request) {
	accept := r.URL.Query().Get("lang")
	if accept == "" {
		accept = r.Header.Get("Accept-Language")
	}
	httpx.JSON(w, http.StatusOK, h.service.Schemes(accept))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Warn(op+" failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
