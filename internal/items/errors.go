package items

import "github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"

var (
	ErrNotFound      = httpx.NewError(httpx.ErrNotFound, "item_not_found", "items: item not found")
	ErrDuplicateSKU  = httpx.NewError(httpx.ErrConflict, "sku_duplicate", "items: sku already exists")
	ErrHasBOM        = httpx.NewError(httpx.ErrConflict, "bom_exists", "items: item has bom components and cannot be deleted")
	ErrInUse         = httpx.NewError(httpx.ErrConflict, "component_in_use", "items: item is used as a component and cannot be deleted")
	ErrInvalidStatus = httpx.NewError(httpx.ErrValidation, "invalid_status", "items: status must be active, inactive or discontinued")
)
