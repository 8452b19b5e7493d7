package bom

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bom/internal/rbac"
	"github.com/odyssey-erp/odyssey-bom/internal/roles"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

// Handler wires HTTP endpoints for BOM module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs BOM handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator(), rbac: rbac}
}

// MountRoutes registers BOM routes below an items router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/{id}/bom", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(roles.ItemsRead))
			r.Get("/tree", h.handleTree)
			r.Get("/stats", h.handleStats)
			r.Get("/components", h.handleList)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(roles.ItemsUpdate))
			r.Post("/components", h.handleAdd)
			r.Patch("/components/{componentId}", h.handleUpdate)
			r.Delete("/components/{componentId}", h.handleRemove)
		})
	})
}

type addComponentRequest struct {
	ComponentItemID uuid.UUID       `json:"component_item_id" validate:"required"`
	Quantity        decimal.Decimal `json:"quantity" validate:"gt=0,lte=9999"`
	Unit            string          `json:"unit" validate:"max=16"`
	Notes           *string         `json:"notes" validate:"omitempty,max=1000"`
}

type updateComponentRequest struct {
	Quantity *decimal.Decimal `json:"quantity" validate:"omitempty,gt=0,lte=9999"`
	Unit     *string          `json:"unit" validate:"omitempty,min=1,max=16"`
	Notes    *string          `json:"notes" validate:"omitempty,max=1000"`
	Sequence *int             `json:"sequence" validate:"omitempty,gte=1"`
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	tree, err := h.service.ResolveTree(r.Context(), id)
	if err != nil {
		h.fail(w, r, "resolve bom tree", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tree)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	stats, err := h.service.ComputeStats(r.Context(), id)
	if err != nil {
		h.fail(w, r, "compute bom stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	lines, err := h.service.ListComponents(r.Context(), id)
	if err != nil {
		h.fail(w, r, "list bom components", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": lines, "total": len(lines)})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	parentID, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req addComponentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.AddComponent(r.Context(), AddComponentInput{
		ParentID:    parentID,
		ComponentID: req.ComponentItemID,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Notes:       req.Notes,
		ActorID:     shared.ActorID(r.Context()),
	})
	if err != nil {
		h.fail(w, r, "add bom component", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	parentID, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	edgeID, err := httpx.UUIDParam(r, "componentId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateComponentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.UpdateComponent(r.Context(), UpdateComponentInput{
		ParentID: parentID,
		EdgeID:   edgeID,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Notes:    req.Notes,
		Sequence: req.Sequence,
		ActorID:  shared.ActorID(r.Context()),
	})
	if err != nil {
		h.fail(w, r, "update bom component", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	parentID, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	edgeID, err := httpx.UUIDParam(r, "componentId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RemoveComponent(r.Context(), parentID, edgeID, shared.ActorID(r.Context())); err != nil {
		h.fail(w, r, "remove bom component", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Warn(op+" failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
