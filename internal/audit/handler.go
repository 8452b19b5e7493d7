package audit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bom/internal/rbac"
	"github.com/odyssey-erp/odyssey-bom/internal/roles"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

const (
	rateLimit        = 30
	rateWindow       = time.Minute
	maxDateRangeDays = 90
)

// TimelineService defines the business contract for timeline data.
type TimelineService interface {
	Timeline(ctx context.Context, filters TimelineFilters) (Result, error)
}

// Handler menangani permintaan audit timeline.
type Handler struct {
	logger  *slog.Logger
	service TimelineService
	rbac    rbac.Middleware
}

// NewHandler membuat handler audit baru.
func NewHandler(logger *slog.Logger, service TimelineService, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers GET /{id}/history under the items router.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(rateLimit, rateWindow, httprate.WithKeyFuncs(rateLimitKey))
	r.With(h.rbac.RequireAny(roles.ItemsRead), limiter).Get("/{id}/history", h.history)
}

func rateLimitKey(r *http.Request) (string, error) {
	if p := shared.PrincipalFromContext(r.Context()); p != nil && p.UserID != "" {
		return "user:" + p.UserID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, err := httpx.IntQuery(r, "page", 1)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pageSize, err := httpx.IntQuery(r, "page_size", defaultPageSize)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	filters := TimelineFilters{
		ItemID:   id.String(),
		Actor:    q.Get("actor"),
		Action:   q.Get("action"),
		Page:     page,
		PageSize: pageSize,
	}
	if filters.From, err = parseDate(q.Get("from")); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be YYYY-MM-DD", "validation_error")
		return
	}
	if filters.To, err = parseDate(q.Get("to")); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be YYYY-MM-DD", "validation_error")
		return
	}
	if !filters.To.IsZero() {
		filters.To = filters.To.AddDate(0, 0, 1)
	}
	if !filters.From.IsZero() && !filters.To.IsZero() {
		if !filters.To.After(filters.From) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must not be after to", "validation_error")
			return
		}
		if filters.To.Sub(filters.From) > maxDateRangeDays*24*time.Hour {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date range exceeds 90 days", "validation_error")
			return
		}
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.String("item_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.UTC)
}
