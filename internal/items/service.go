package items

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-bom/internal/classification"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates item catalog operations.
type Service struct {
	repo     Repository
	registry *classification.Registry
	schemeID string
	audit    AuditPort
}

// NewService builds Service. schemeID selects the classification scheme item
// types are validated against; an unknown id falls back to the registry default.
func NewService(repo Repository, registry *classification.Registry, schemeID string, audit AuditPort) *Service {
	if registry == nil {
		registry = classification.Default()
	}
	if _, ok := registry.Scheme(schemeID); !ok {
		schemeID = registry.DefaultID()
	}
	return &Service{repo: repo, registry: registry, schemeID: schemeID, audit: audit}
}

// SchemeID returns the active classification scheme.
func (s *Service) SchemeID() string {
	return s.schemeID
}

// List returns a window of items and the total matching count.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	filters.Window = shared.NewWindow(filters.Skip, filters.Limit)
	if filters.ItemType != "" {
		if code, err := s.registry.Normalize(s.schemeID, filters.ItemType); err == nil {
			filters.ItemType = code
		}
	}
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		s.decorate(&items[i])
	}
	return items, total, nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	s.decorate(&item)
	return item, nil
}

// Create validates and stores a new item. Legacy type codes are translated to
// the active scheme before storage.
func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	item.SKU = strings.TrimSpace(item.SKU)
	item.Name = strings.TrimSpace(item.Name)
	item.UOM = strings.TrimSpace(item.UOM)
	if item.UOM == "" {
		item.UOM = DefaultUOM
	}
	if item.Status == "" {
		item.Status = StatusActive
	}
	code, err := s.registry.Normalize(s.schemeID, item.ItemType)
	if err != nil {
		return Item{}, err
	}
	item.ItemType = code
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return Item{}, err
	}
	s.record(ctx, "items:create", created.ID, map[string]any{"sku": created.SKU, "item_type": created.ItemType})
	s.decorate(&created)
	return created, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (Item, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if patch.SKU != nil {
		current.SKU = strings.TrimSpace(*patch.SKU)
	}
	if patch.Name != nil {
		current.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		current.Description = patch.Description
	}
	if patch.CategoryID != nil {
		current.CategoryID = patch.CategoryID
	}
	if patch.ItemType != nil {
		code, err := s.registry.Normalize(s.schemeID, *patch.ItemType)
		if err != nil {
			return Item{}, err
		}
		current.ItemType = code
	}
	if patch.UOM != nil {
		current.UOM = strings.TrimSpace(*patch.UOM)
		if current.UOM == "" {
			current.UOM = DefaultUOM
		}
	}
	if patch.UnitCost != nil {
		current.UnitCost.Decimal = *patch.UnitCost
		current.UnitCost.Valid = true
	}
	if patch.Status != nil {
		current.Status = *patch.Status
	}
	if err := s.validate(current); err != nil {
		return Item{}, err
	}
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Item{}, err
	}
	s.record(ctx, "items:update", updated.ID, map[string]any{"sku": updated.SKU})
	s.decorate(&updated)
	return updated, nil
}

// Delete removes an item that is neither a BOM parent nor a component.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "items:delete", id, nil)
	return nil
}

// Schemes describes the active scheme, localized for acceptLanguage.
func (s *Service) Schemes(acceptLanguage string) SchemesInfo {
	scheme, _ := s.registry.Scheme(s.schemeID)
	labels, locale, _ := s.registry.Localize(s.schemeID, acceptLanguage)
	return SchemesInfo{
		CurrentScheme:    s.schemeID,
		AvailableSchemes: s.registry.IDs(),
		Locale:           locale,
		Scheme:           scheme,
		Labels:           labels,
		LegacyMapping:    classification.LegacyMapping(),
	}
}

func (s *Service) decorate(item *Item) {
	if flags, ok := s.registry.BehaviorFlags(s.schemeID, item.ItemType); ok {
		item.Behavior = &flags
	}
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "item",
		EntityID: id.String(),
		Meta:     meta,
	})
}
