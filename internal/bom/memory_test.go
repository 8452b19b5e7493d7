package bom

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

type memoryRepo struct {
	txMu      sync.Mutex
	mu        sync.Mutex
	items     map[uuid.UUID]ComponentItem
	edges     []Component
	listCalls atomic.Int64

	graphLocks   atomic.Int64
	graphLocked  atomic.Bool
	failChildren error
	failSequence error
	// failInsert is returned after the edge has been written.
	failInsert error
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[uuid.UUID]ComponentItem)}
}

// addItem registers an item; cost < 0 leaves unit_cost null.
func (r *memoryRepo) addItem(sku, itemType string, cost float64) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	item := ComponentItem{ID: id, SKU: sku, Name: sku + " name", ItemType: itemType, UOM: "EA"}
	if cost >= 0 {
		item.UnitCost = decimal.NewNullDecimal(decimal.NewFromFloat(cost))
	}
	r.items[id] = item
	return id
}

// link stores an edge without any validation.
func (r *memoryRepo) link(parent, component uuid.UUID, qty int64, seq int) Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := Component{
		ID:              uuid.New(),
		ParentItemID:    parent,
		ComponentItemID: component,
		Quantity:        decimal.NewFromInt(qty),
		Unit:            DefaultUnit,
		Sequence:        seq,
		CreatedAt:       time.Now(),
	}
	r.edges = append(r.edges, c)
	return c
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := append([]Component(nil), r.edges...)
	r.mu.Unlock()

	defer r.graphLocked.Store(false)
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.mu.Lock()
		r.edges = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memoryRepo) ItemExists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

func (r *memoryRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]Line, error) {
	r.listCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := []Line{}
	for _, e := range r.edges {
		if e.ParentItemID == parentID {
			lines = append(lines, Line{Component: e, Item: r.items[e.ComponentItemID]})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Sequence < lines[j].Sequence })
	return lines, nil
}

func (tx *memoryTx) LockGraph(ctx context.Context) error {
	tx.repo.graphLocks.Add(1)
	tx.repo.graphLocked.Store(true)
	return nil
}

func (tx *memoryTx) LockItem(ctx context.Context, id uuid.UUID) (bool, error) {
	return tx.repo.ItemExists(ctx, id)
}

func (tx *memoryTx) ItemExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return tx.repo.ItemExists(ctx, id)
}

func (tx *memoryTx) EdgeExists(ctx context.Context, parentID, componentID uuid.UUID) (bool, error) {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	for _, e := range tx.repo.edges {
		if e.ParentItemID == parentID && e.ComponentItemID == componentID {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memoryTx) ChildItemIDs(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	if !tx.repo.graphLocked.Load() {
		return nil, errors.New("memory: edges walked without graph lock")
	}
	if tx.repo.failChildren != nil {
		return nil, tx.repo.failChildren
	}
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	var ids []uuid.UUID
	for _, e := range tx.repo.edges {
		if e.ParentItemID == parentID {
			ids = append(ids, e.ComponentItemID)
		}
	}
	return ids, nil
}

func (tx *memoryTx) NextSequence(ctx context.Context, parentID uuid.UUID) (int, error) {
	if tx.repo.failSequence != nil {
		return 0, tx.repo.failSequence
	}
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	highest := 0
	for _, e := range tx.repo.edges {
		if e.ParentItemID == parentID && e.Sequence > highest {
			highest = e.Sequence
		}
	}
	return highest + 1, nil
}

func (tx *memoryTx) InsertComponent(ctx context.Context, c Component) (Component, error) {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	tx.repo.edges = append(tx.repo.edges, c)
	if tx.repo.failInsert != nil {
		return Component{}, tx.repo.failInsert
	}
	return c, nil
}

func (tx *memoryTx) GetComponentForUpdate(ctx context.Context, id uuid.UUID) (Component, error) {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	for _, e := range tx.repo.edges {
		if e.ID == id {
			return e, nil
		}
	}
	return Component{}, ErrEdgeNotFound
}

func (tx *memoryTx) UpdateComponent(ctx context.Context, c Component) (Component, error) {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	for i, e := range tx.repo.edges {
		if e.ID == c.ID {
			tx.repo.edges[i] = c
			return c, nil
		}
	}
	return Component{}, ErrEdgeNotFound
}

func (tx *memoryTx) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	for i, e := range tx.repo.edges {
		if e.ID == id {
			tx.repo.edges = append(tx.repo.edges[:i], tx.repo.edges[i+1:]...)
			return nil
		}
	}
	return ErrEdgeNotFound
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []shared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, log)
	return nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}
