package bom

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ItemExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]Line, error)
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	// LockGraph serializes edge inserts for the rest of the transaction.
	LockGraph(ctx context.Context) error
	LockItem(ctx context.Context, id uuid.UUID) (bool, error)
	ItemExists(ctx context.Context, id uuid.UUID) (bool, error)
	EdgeExists(ctx context.Context, parentID, componentID uuid.UUID) (bool, error)
	ChildItemIDs(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error)
	NextSequence(ctx context.Context, parentID uuid.UUID) (int, error)
	InsertComponent(ctx context.Context, c Component) (Component, error)
	GetComponentForUpdate(ctx context.Context, id uuid.UUID) (Component, error)
	UpdateComponent(ctx context.Context, c Component) (Component, error)
	DeleteComponent(ctx context.Context, id uuid.UUID) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates BOM operations.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	fanOut int
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// FanOut caps concurrent child lookups per sibling set. Values below 2 resolve sequentially.
	FanOut int
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, cfg ServiceConfig) *Service {
	return &Service{repo: repo, audit: audit, fanOut: cfg.FanOut}
}

// ListComponents returns the direct components of an item.
func (s *Service) ListComponents(ctx context.Context, parentID uuid.UUID) ([]Line, error) {
	ok, err := s.repo.ItemExists(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, parentID)
	}
	lines, err := s.repo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}

// AddComponent links componentID under parentID after validating the edge.
func (s *Service) AddComponent(ctx context.Context, input AddComponentInput) (Component, error) {
	if err := validateQuantity(input.Quantity); err != nil {
		return Component{}, err
	}
	unit := normalizeUnit(input.Unit)

	var created Component
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockGraph(ctx); err != nil {
			return err
		}
		ok, err := tx.LockItem(ctx, input.ParentID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrParentNotFound, input.ParentID)
		}
		ok, err = tx.ItemExists(ctx, input.ComponentID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrComponentNotFound, input.ComponentID)
		}
		if input.ParentID == input.ComponentID {
			return ErrSelfReference
		}
		dup, err := tx.EdgeExists(ctx, input.ParentID, input.ComponentID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateComponent
		}
		loop, err := reaches(ctx, tx, input.ComponentID, input.ParentID)
		if err != nil {
			return err
		}
		if loop {
			return ErrCycleDetected
		}
		seq, err := tx.NextSequence(ctx, input.ParentID)
		if err != nil {
			return err
		}
		created, err = tx.InsertComponent(ctx, Component{
			ParentItemID:    input.ParentID,
			ComponentItemID: input.ComponentID,
			Quantity:        input.Quantity,
			Unit:            unit,
			Sequence:        seq,
			Notes:           trimNotes(input.Notes),
		})
		return err
	})
	if err != nil {
		return Component{}, err
	}
	s.record(ctx, input.ActorID, "bom:add", created)
	return created, nil
}

// UpdateComponent patches quantity, unit, notes or sequence of an edge.
func (s *Service) UpdateComponent(ctx context.Context, input UpdateComponentInput) (Component, error) {
	if input.Quantity != nil {
		if err := validateQuantity(*input.Quantity); err != nil {
			return Component{}, err
		}
	}
	if input.Sequence != nil && *input.Sequence < 1 {
		return Component{}, ErrInvalidSequence
	}

	var updated Component
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetComponentForUpdate(ctx, input.EdgeID)
		if err != nil {
			return err
		}
		if current.ParentItemID != input.ParentID {
			return fmt.Errorf("%w: %s", ErrEdgeNotFound, input.EdgeID)
		}
		if input.Quantity != nil {
			current.Quantity = *input.Quantity
		}
		if input.Unit != nil {
			current.Unit = normalizeUnit(*input.Unit)
		}
		if input.Notes != nil {
			current.Notes = trimNotes(input.Notes)
		}
		if input.Sequence != nil {
			current.Sequence = *input.Sequence
		}
		updated, err = tx.UpdateComponent(ctx, current)
		return err
	})
	if err != nil {
		return Component{}, err
	}
	s.record(ctx, input.ActorID, "bom:update", updated)
	return updated, nil
}

// RemoveComponent deletes one edge under parentID. Descendant edges are kept.
func (s *Service) RemoveComponent(ctx context.Context, parentID, edgeID uuid.UUID, actorID string) error {
	var removed Component
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetComponentForUpdate(ctx, edgeID)
		if err != nil {
			return err
		}
		if current.ParentItemID != parentID {
			return fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
		}
		removed = current
		return tx.DeleteComponent(ctx, edgeID)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorID, "bom:remove", removed)
	return nil
}

// reaches reports whether target is reachable from start following parent→component edges.
func reaches(ctx context.Context, tx TxRepository, start, target uuid.UUID) (bool, error) {
	if start == target {
		return true, nil
	}
	visited := map[uuid.UUID]struct{}{start: {}}
	queue := []uuid.UUID{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		children, err := tx.ChildItemIDs(ctx, current)
		if err != nil {
			return false, err
		}
		for _, child := range children {
			if child == target {
				return true, nil
			}
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return false, nil
}

func (s *Service) record(ctx context.Context, actorID, action string, c Component) {
	if s.audit == nil {
		return
	}
	if actorID == "" {
		actorID = shared.ActorID(ctx)
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "bom_component",
		EntityID: c.ID.String(),
		Meta: map[string]any{
			"parent_item_id":    c.ParentItemID.String(),
			"component_item_id": c.ComponentItemID.String(),
			"quantity":          c.Quantity.String(),
			"unit":              c.Unit,
			"sequence":          c.Sequence,
		},
	})
}

func validateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() || q.GreaterThan(MaxQuantity) {
		return ErrInvalidQuantity
	}
	return nil
}

func normalizeUnit(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return DefaultUnit
	}
	return unit
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	v := strings.TrimSpace(*notes)
	if v == "" {
		return nil
	}
	return &v
}
