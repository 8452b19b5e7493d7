package bom

import "github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"

var (
	// ErrItemNotFound is returned when the root item of a read is missing.
	ErrItemNotFound = httpx.NewError(httpx.ErrNotFound, "item_not_found", "bom: item not found")
	// ErrParentNotFound is returned when the parent of a new edge is missing.
	ErrParentNotFound = httpx.NewError(httpx.ErrNotFound, "parent_not_found", "bom: parent item not found")
	// ErrComponentNotFound is returned when the component of a new edge is missing.
	ErrComponentNotFound = httpx.NewError(httpx.ErrNotFound, "component_not_found", "bom: component item not found")
	// ErrEdgeNotFound is returned when an edge id does not exist under the parent.
	ErrEdgeNotFound = httpx.NewError(httpx.ErrNotFound, "bom_component_not_found", "bom: component entry not found")
	// ErrSelfReference rejects an item listed as its own component.
	ErrSelfReference = httpx.NewError(httpx.ErrInvalidOperation, "self_reference", "bom: an item cannot be a component of itself")
	// ErrDuplicateComponent rejects a second edge for the same pair.
	ErrDuplicateComponent = httpx.NewError(httpx.ErrConflict, "duplicate_component", "bom: component is already part of this bom")
	// ErrCycleDetected rejects edges that would close a loop, and trees that contain one.
	ErrCycleDetected = httpx.NewError(httpx.ErrInvalidOperation, "cycle_detected", "bom: component hierarchy would contain a cycle")
	// ErrInvalidQuantity rejects quantities outside (0, 9999].
	ErrInvalidQuantity = httpx.NewError(httpx.ErrValidation, "invalid_quantity", "bom: quantity must be greater than 0 and at most 9999")
	// ErrInvalidSequence rejects sequences below 1.
	ErrInvalidSequence = httpx.NewError(httpx.ErrValidation, "invalid_sequence", "bom: sequence must be at least 1")
)
