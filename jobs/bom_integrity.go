package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-bom/internal/bom"
	jobmetrics "github.com/odyssey-erp/odyssey-bom/internal/jobs"
	"github.com/odyssey-erp/odyssey-bom/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

const defaultScanLockTTL = 5 * time.Minute

// EdgeSource exposes the stored BOM graph to the integrity scan.
type EdgeSource interface {
	Edges(ctx context.Context, fn func(parentID, componentID uuid.UUID) error) error
	DiscontinuedEdges(ctx context.Context) ([]bom.EdgeRef, error)
}

// IntegrityReport summarises one scan.
type IntegrityReport struct {
	ScannedAt time.Time `json:"scanned_at"`
	Edges     int       `json:"edges"`
	// Cycles lists every strongly connected group of items reachable from each other.
	Cycles [][]uuid.UUID `json:"cycles"`
	// DeepRoots lists roots whose longest chain exceeds the depth limit.
	DeepRoots    []uuid.UUID `json:"deep_roots"`
	Discontinued []bom.EdgeRef `json:"discontinued_edges"`
}

// Issues returns the number of findings.
func (r IntegrityReport) Issues() int {
	return len(r.Cycles) + len(r.DeepRoots) + len(r.Discontinued)
}

// BOMIntegrityJob inspects stored BOM edges for cycles, over-deep chains and
// references to discontinued items.
type BOMIntegrityJob struct {
	Source  EdgeSource
	Redis   redis.Cmdable
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	LockTTL time.Duration
	clock   func() time.Time
}

// NewBOMIntegrityJob initialises the integrity scan handler. redis may be nil,
// in which case scans run without the single-holder lock.
func NewBOMIntegrityJob(source EdgeSource, client redis.Cmdable, logger *slog.Logger, metrics *jobmetrics.Metrics) *BOMIntegrityJob {
	return &BOMIntegrityJob{
		Source:  source,
		Redis:   client,
		Logger:  logger,
		Metrics: metrics,
		LockTTL: defaultScanLockTTL,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the scan for an asynq task.
func (j *BOMIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil {
		return errors.New("bom integrity: handler not configured")
	}
	var payload BOMIntegrityScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("bom integrity: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	_, err := j.Run(ctx, payload)
	if errors.Is(err, cache.ErrLockHeld) {
		return nil
	}
	return err
}

// Run scans the graph and returns the report. It returns cache.ErrLockHeld when
// another scan of the same scope is in progress.
func (j *BOMIntegrityJob) Run(ctx context.Context, payload BOMIntegrityScanPayload) (report IntegrityReport, resultErr error) {
	if payload.MaxDepth <= 0 {
		payload.MaxDepth = bom.MaxTreeDepth
	}
	logger := j.logger().With(slog.String("scope", payload.Scope()), slog.Int("max_depth", payload.MaxDepth))

	if j.Redis != nil {
		lock, err := cache.AcquireLock(ctx, j.Redis, shared.BOMScanLockKey(payload.Scope()), uuid.NewString(), j.lockTTL())
		if errors.Is(err, cache.ErrLockHeld) {
			j.Metrics.Skipped(TaskBOMIntegrityScan)
			logger.Info("integrity scan already running, skipping")
			return IntegrityReport{}, err
		}
		if err != nil {
			return IntegrityReport{}, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("release scan lock", slog.Any("error", err))
			}
		}()
	}

	tracker := j.Metrics.Track(TaskBOMIntegrityScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger.Info("starting bom integrity scan")
	g := newGraph()
	if err := j.Source.Edges(ctx, func(parentID, componentID uuid.UUID) error {
		g.add(parentID, componentID)
		return ctx.Err()
	}); err != nil {
		logger.Error("load edges failed", slog.Any("error", err))
		return IntegrityReport{}, err
	}
	if payload.RootItemID != nil {
		g = g.reachableFrom(*payload.RootItemID)
	}

	report = IntegrityReport{ScannedAt: j.now(), Edges: g.edges, Cycles: [][]uuid.UUID{}, DeepRoots: []uuid.UUID{}, Discontinued: []bom.EdgeRef{}}
	report.Cycles = g.cycles()
	inCycle := map[uuid.UUID]bool{}
	for _, c := range report.Cycles {
		for _, id := range c {
			inCycle[id] = true
		}
	}
	roots := g.roots()
	if payload.RootItemID != nil {
		roots = []uuid.UUID{*payload.RootItemID}
	}
	heights := map[uuid.UUID]int{}
	for _, root := range roots {
		if inCycle[root] {
			continue
		}
		if g.height(root, inCycle, heights) > payload.MaxDepth {
			report.DeepRoots = append(report.DeepRoots, root)
		}
	}

	discontinued, err := j.Source.DiscontinuedEdges(ctx)
	if err != nil {
		logger.Error("load discontinued edges failed", slog.Any("error", err))
		return IntegrityReport{}, err
	}
	if payload.RootItemID == nil {
		report.Discontinued = discontinued
	} else {
		report.Discontinued = g.filterEdges(discontinued)
	}

	j.Metrics.AddIssues("cycle", len(report.Cycles))
	j.Metrics.AddIssues("depth", len(report.DeepRoots))
	j.Metrics.AddIssues("discontinued", len(report.Discontinued))

	for _, c := range report.Cycles {
		logger.Warn("bom cycle detected", slog.Any("items", c))
	}
	for _, id := range report.DeepRoots {
		logger.Warn("bom exceeds depth limit", slog.String("root_item_id", id.String()))
	}
	logger.Info("bom integrity scan complete",
		slog.Int("edges", report.Edges),
		slog.Int("issues", report.Issues()),
	)
	return report, nil
}

func (j *BOMIntegrityJob) lockTTL() time.Duration {
	if j.LockTTL <= 0 {
		return defaultScanLockTTL
	}
	return j.LockTTL
}

func (j *BOMIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *BOMIntegrityJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
