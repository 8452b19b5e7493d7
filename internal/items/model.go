package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bom/internal/classification"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

// Item statuses.
const (
	StatusActive       = "active"
	StatusInactive     = "inactive"
	StatusDiscontinued = "discontinued"
)

// DefaultUOM is applied when an item is created without a unit of measure.
const DefaultUOM = "EA"

// Item represents a catalog item that may act as a BOM parent or component.
type Item struct {
	ID          uuid.UUID                     `json:"id"`
	SKU         string                        `json:"sku"`
	Name        string                        `json:"name"`
	Description *string                       `json:"description,omitempty"`
	CategoryID  *uuid.UUID                    `json:"category_id,omitempty"`
	ItemType    string                        `json:"item_type"`
	UOM         string                        `json:"uom"`
	UnitCost    decimal.NullDecimal           `json:"unit_cost"`
	Status      string                        `json:"status"`
	Behavior    *classification.BehaviorFlags `json:"behavior,omitempty"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

// ListFilters narrows an item listing.
type ListFilters struct {
	shared.Window
	Status     string
	ItemType   string
	CategoryID *uuid.UUID
	Search     string
}

// Patch carries the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	SKU         *string
	Name        *string
	Description *string
	CategoryID  *uuid.UUID
	ItemType    *string
	UOM         *string
	UnitCost    *decimal.Decimal
	Status      *string
}

// SchemesInfo describes the active classification scheme for clients.
type SchemesInfo struct {
	CurrentScheme    string                          `json:"current_scheme"`
	AvailableSchemes []string                        `json:"available_schemes"`
	Locale           string                          `json:"locale"`
	Scheme           classification.Scheme           `json:"scheme"`
	Labels           []classification.LocalizedLabel `json:"labels"`
	LegacyMapping    map[string]string               `json:"legacy_mapping"`
}
