package items

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
)

func (s *Service) validate(item Item) error {
	if strings.TrimSpace(item.SKU) == "" {
		return fmt.Errorf("%w: sku is required", httpx.ErrValidation)
	}
	if len(item.SKU) > 100 {
		return fmt.Errorf("%w: sku must be at most 100 characters", httpx.ErrValidation)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	if len(item.Name) > 200 {
		return fmt.Errorf("%w: name must be at most 200 characters", httpx.ErrValidation)
	}
	if item.UnitCost.Valid && item.UnitCost.Decimal.IsNegative() {
		return fmt.Errorf("%w: unit_cost must not be negative", httpx.ErrValidation)
	}
	switch item.Status {
	case StatusActive, StatusInactive, StatusDiscontinued:
	default:
		return ErrInvalidStatus
	}
	return nil
}
