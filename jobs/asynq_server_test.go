package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bom/internal/rbac"
	"github.com/odyssey-erp/odyssey-bom/internal/roles"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

type stubEnqueuer struct {
	payloads []BOMIntegrityScanPayload
	err      error
}

func (s *stubEnqueuer) EnqueueIntegrityScan(ctx context.Context, payload BOMIntegrityScanPayload) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.payloads = append(s.payloads, payload)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func jobsRouter(h *Handler, role string) http.Handler {
	r := chi.NewRouter()
	r.Route("/jobs", func(r chi.Router) {
		h.MountHealth(r)
		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					ctx := shared.ContextWithPrincipal(req.Context(), &shared.Principal{UserID: "u-1", Roles: []string{role}})
					next.ServeHTTP(w, req.WithContext(ctx))
				})
			})
			h.MountRoutes(r)
		})
	})
	return r
}

func TestTriggerIntegrityScan(t *testing.T) {
	enq := &stubEnqueuer{}
	h := NewHandler(nil, enq, rbac.Middleware{}, nil)

	rr := httptest.NewRecorder()
	jobsRouter(h, roles.Staff).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/bom-integrity", nil))
	require.Equal(t, http.StatusForbidden, rr.Code)

	root := uuid.New()
	rr = httptest.NewRecorder()
	body := strings.NewReader(`{"root_item_id":"` + root.String() + `","max_depth":4}`)
	jobsRouter(h, roles.Manager).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/bom-integrity", body))
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Contains(t, rr.Body.String(), `"task_id":"task-1"`)
	require.Len(t, enq.payloads, 1)
	require.Equal(t, root, *enq.payloads[0].RootItemID)
	require.Equal(t, 4, enq.payloads[0].MaxDepth)

	rr = httptest.NewRecorder()
	jobsRouter(h, roles.Manager).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/bom-integrity", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Nil(t, enq.payloads[1].RootItemID)

	enq.err = asynq.ErrDuplicateTask
	rr = httptest.NewRecorder()
	jobsRouter(h, roles.Manager).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/bom-integrity", nil))
	require.Equal(t, http.StatusConflict, rr.Code)

	enq.err = errors.New("redis down")
	rr = httptest.NewRecorder()
	jobsRouter(h, roles.Manager).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/bom-integrity", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestJobsHealth(t *testing.T) {
	h := NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 7}}, nil, rbac.Middleware{}, nil)
	rr := httptest.NewRecorder()
	jobsRouter(h, roles.Readonly).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"queue":"default","pending":7}`, rr.Body.String())

	h = NewHandler(stubInspector{err: errors.New("down")}, nil, rbac.Middleware{}, nil)
	rr = httptest.NewRecorder()
	jobsRouter(h, roles.Readonly).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
