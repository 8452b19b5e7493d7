package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bom/internal/app"
	"github.com/odyssey-erp/odyssey-bom/internal/auth"
	"github.com/odyssey-erp/odyssey-bom/jobs"
)

type stubQueue struct {
	payloads []jobs.BOMIntegrityScanPayload
	closed   int
}

func (s *stubQueue) EnqueueIntegrityScan(ctx context.Context, payload jobs.BOMIntegrityScanPayload) (*asynq.TaskInfo, error) {
	s.payloads = append(s.payloads, payload)
	return &asynq.TaskInfo{ID: "t-42", Queue: jobs.QueueDefault}, nil
}

func (s *stubQueue) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: queue, Pending: 3, Retry: 1}, nil
}

func (s *stubQueue) ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "s-1", Type: jobs.TaskBOMIntegrityScan, NextProcessAt: time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)}}, nil
}

func (s *stubQueue) Close() error {
	s.closed++
	return nil
}

func run(t *testing.T, opts Options, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func stubOptions(q *stubQueue) Options {
	return Options{
		LoadConfig: func() (*app.Config, error) {
			return &app.Config{RedisAddr: "127.0.0.1:0", JWTSecret: "s3cret", JWTAlgorithm: "HS256"}, nil
		},
		OpenJobs: func(string) *JobsCLI { return &JobsCLI{client: q, inspector: q} },
		Now:      time.Now,
	}
}

func TestJobsCommands(t *testing.T) {
	q := &stubQueue{}
	opts := stubOptions(q)
	root := uuid.New()

	out, err := run(t, opts, "jobs", "scan", "--root", root.String(), "--max-depth", "6")
	require.NoError(t, err)
	require.Contains(t, out, `"task_id": "t-42"`)
	require.Len(t, q.payloads, 1)
	require.Equal(t, root, *q.payloads[0].RootItemID)
	require.Equal(t, 6, q.payloads[0].MaxDepth)

	_, err = run(t, opts, "jobs", "scan", "--root", "bogus")
	require.ErrorContains(t, err, "invalid --root")

	out, err = run(t, opts, "jobs", "stats")
	require.NoError(t, err)
	var stats QueueStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	require.Equal(t, 3, stats.Pending)
	require.Equal(t, 1, stats.Retry)

	out, err = run(t, opts, "jobs", "scheduled")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "s-1\t"+jobs.TaskBOMIntegrityScan))

	// scan (success), stats and scheduled each close the helpers twice
	require.Equal(t, 6, q.closed)
}

func TestTokenCommand(t *testing.T) {
	opts := stubOptions(&stubQueue{})

	_, err := run(t, opts, "token")
	require.Error(t, err)

	out, err := run(t, opts, "token", "--sub", "u-7", "--role", "manager", "--ttl", "5m")
	require.NoError(t, err)

	verifier, err := auth.NewVerifier(auth.VerifierConfig{Secret: "s3cret"})
	require.NoError(t, err)
	principal, err := verifier.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "u-7", principal.UserID)
	require.Equal(t, []string{"manager"}, principal.Roles)
}
