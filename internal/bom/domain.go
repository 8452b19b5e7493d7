package bom

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxTreeDepth bounds tree resolution. Deeper branches are truncated.
const MaxTreeDepth = 10

// DefaultUnit is applied when an edge is added without a unit.
const DefaultUnit = "EA"

// MaxQuantity is the largest quantity accepted on an edge.
var MaxQuantity = decimal.NewFromInt(9999)

// Component is a parent→component edge.
type Component struct {
	ID              uuid.UUID       `json:"id"`
	ParentItemID    uuid.UUID       `json:"parent_item_id"`
	ComponentItemID uuid.UUID       `json:"component_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	Sequence        int             `json:"sequence"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ComponentItem holds the attributes of the item an edge points to.
type ComponentItem struct {
	ID          uuid.UUID           `json:"id"`
	SKU         string              `json:"sku"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	ItemType    string              `json:"item_type"`
	UOM         string              `json:"uom"`
	UnitCost    decimal.NullDecimal `json:"unit_cost"`
}

// Line is an edge joined with its component item.
type Line struct {
	Component
	Item ComponentItem `json:"component_item"`
}

// TreeNode is one resolved edge with its nested children.
type TreeNode struct {
	ID           uuid.UUID           `json:"id"`
	ParentItemID uuid.UUID           `json:"parent_item_id"`
	ChildItemID  uuid.UUID           `json:"child_item_id"`
	SKU          string              `json:"sku"`
	Name         string              `json:"name"`
	Description  *string             `json:"description,omitempty"`
	ItemType     string              `json:"item_type"`
	Quantity     decimal.Decimal     `json:"quantity"`
	Unit         string              `json:"unit"`
	UOM          string              `json:"uom"`
	UnitCost     decimal.NullDecimal `json:"unit_cost"`
	Sequence     int                 `json:"sequence"`
	Notes        *string             `json:"notes,omitempty"`
	Depth        int                 `json:"depth"`
	Children     []TreeNode          `json:"children"`
}

func newTreeNode(l Line, depth int) TreeNode {
	return TreeNode{
		ID:           l.ID,
		ParentItemID: l.ParentItemID,
		ChildItemID:  l.ComponentItemID,
		SKU:          l.Item.SKU,
		Name:         l.Item.Name,
		Description:  l.Item.Description,
		ItemType:     l.Item.ItemType,
		Quantity:     l.Quantity,
		Unit:         l.Unit,
		UOM:          l.Item.UOM,
		UnitCost:     l.Item.UnitCost,
		Sequence:     l.Sequence,
		Notes:        l.Notes,
		Depth:        depth,
		Children:     []TreeNode{},
	}
}

// Stats aggregates a resolved tree.
type Stats struct {
	TotalComponents     int             `json:"total_components"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	MaxDepth            int             `json:"max_depth"`
	ComponentTypeCounts map[string]int  `json:"component_type_counts"`
}

// MarshalJSON renders total_cost as a number with two decimals.
func (s Stats) MarshalJSON() ([]byte, error) {
	counts := s.ComponentTypeCounts
	if counts == nil {
		counts = map[string]int{}
	}
	return json.Marshal(struct {
		TotalComponents     int            `json:"total_components"`
		TotalCost           json.Number    `json:"total_cost"`
		MaxDepth            int            `json:"max_depth"`
		ComponentTypeCounts map[string]int `json:"component_type_counts"`
	}{
		TotalComponents:     s.TotalComponents,
		TotalCost:           json.Number(s.TotalCost.StringFixed(2)),
		MaxDepth:            s.MaxDepth,
		ComponentTypeCounts: counts,
	})
}

// AddComponentInput describes a new edge.
type AddComponentInput struct {
	ParentID    uuid.UUID
	ComponentID uuid.UUID
	Quantity    decimal.Decimal
	Unit        string
	Notes       *string
	ActorID     string
}

// UpdateComponentInput patches an edge. Nil fields are left untouched.
type UpdateComponentInput struct {
	ParentID uuid.UUID
	EdgeID   uuid.UUID
	Quantity *decimal.Decimal
	Unit     *string
	Notes    *string
	Sequence *int
	ActorID  string
}

// EdgeRef identifies a stored edge without its payload.
type EdgeRef struct {
	ID              uuid.UUID `json:"id"`
	ParentItemID    uuid.UUID `json:"parent_item_id"`
	ComponentItemID uuid.UUID `json:"component_item_id"`
}
