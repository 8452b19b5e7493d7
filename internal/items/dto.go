package items

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type createRequest struct {
	SKU         string              `json:"sku" validate:"required,max=100"`
	Name        string              `json:"name" validate:"required,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=2000"`
	CategoryID  *uuid.UUID          `json:"category_id"`
	ItemType    string              `json:"item_type" validate:"required,max=32"`
	UOM         string              `json:"uom" validate:"omitempty,max=16"`
	UnitCost    decimal.NullDecimal `json:"unit_cost" validate:"omitempty,gte=0"`
	Status      string              `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
}

type updateRequest struct {
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	ItemType    *string          `json:"item_type" validate:"omitempty,min=1,max=32"`
	UOM         *string          `json:"uom" validate:"omitempty,min=1,max=16"`
	UnitCost    *decimal.Decimal `json:"unit_cost" validate:"omitempty,gte=0"`
	Status      *string          `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
}

func (r createRequest) toItem() Item {
	return Item{
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		ItemType:    r.ItemType,
		UOM:         r.UOM,
		UnitCost:    r.UnitCost,
		Status:      r.Status,
	}
}

func (r updateRequest) toPatch() Patch {
	return Patch{
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		ItemType:    r.ItemType,
		UOM:         r.UOM,
		UnitCost:    r.UnitCost,
		Status:      r.Status,
	}
}
