package roles

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
)

// Guard wraps handlers with a permission check.
type Guard interface {
	RequireAny(perms ...string) func(http.Handler) http.Handler
}

// Handler exposes the role catalog.
type Handler struct {
	guard Guard
}

// NewHandler builds Handler instance.
func NewHandler(guard Guard) *Handler {
	return &Handler{guard: guard}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequireAny(ItemsRead)).Get("/", h.listRoles)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"data": Catalog()})
}
