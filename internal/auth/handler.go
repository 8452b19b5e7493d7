package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

// Handler authenticates requests carrying bearer tokens.
type Handler struct {
	logger   *slog.Logger
	verifier *Verifier
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, verifier *Verifier) *Handler {
	return &Handler{logger: logger, verifier: verifier}
}

// Authenticate rejects requests without a valid bearer token and stores the
// principal in the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error(), "unauthorized")
			return
		}
		principal, err := h.verifier.Verify(token)
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("token validation failed", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrInvalidToken.Error(), "unauthorized")
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", shared.ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}
