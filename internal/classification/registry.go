package classification

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
)

// Errors returned by code resolution.
var (
	ErrUnknownScheme = httpx.NewError(httpx.ErrInvalidOperation, "invalid_classification", "classification: unknown scheme")
	ErrUnknownCode   = httpx.NewError(httpx.ErrInvalidOperation, "invalid_classification", "classification: unknown code")
)

// Registry is an immutable lookup over classification schemes.
type Registry struct {
	schemes   map[string]Scheme
	order     []string
	defaultID string
}

// NewRegistry indexes the given schemes. The first scheme flagged as system
// default (or the first one given) becomes the fallback.
func NewRegistry(schemes ...Scheme) *Registry {
	r := &Registry{schemes: make(map[string]Scheme, len(schemes))}
	for _, s := range schemes {
		if _, dup := r.schemes[s.ID]; dup {
			continue
		}
		r.schemes[s.ID] = s
		r.order = append(r.order, s.ID)
		if s.IsSystemDefault && r.defaultID == "" {
			r.defaultID = s.ID
		}
	}
	if r.defaultID == "" && len(r.order) > 0 {
		r.defaultID = r.order[0]
	}
	return r
}

// Default returns the built-in simple and extended schemes.
func Default() *Registry {
	return NewRegistry(simpleScheme, extendedScheme)
}

// IDs lists scheme identifiers in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// DefaultID returns the system default scheme id.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Scheme returns the scheme with the given id.
func (r *Registry) Scheme(id string) (Scheme, bool) {
	s, ok := r.schemes[id]
	if !ok {
		return Scheme{}, false
	}
	labels := make([]Label, len(s.Labels))
	copy(labels, s.Labels)
	s.Labels = labels
	return s, true
}

// Label returns the label for code in scheme schemeID.
func (r *Registry) Label(schemeID, code string) (Label, bool) {
	s, ok := r.schemes[schemeID]
	if !ok {
		return Label{}, false
	}
	for _, l := range s.Labels {
		if l.Code == code {
			return l, true
		}
	}
	return Label{}, false
}

// BehaviorFlags looks up the flags for code. The boolean is false when the
// code is not defined in the scheme, which callers must treat as invalid input.
func (r *Registry) BehaviorFlags(schemeID, code string) (BehaviorFlags, bool) {
	l, ok := r.Label(schemeID, code)
	if !ok {
		return BehaviorFlags{}, false
	}
	return l.Behavior, true
}

// Normalize resolves code to a scheme code. Scheme codes pass through, legacy
// codes are translated, anything else is ErrUnknownCode.
func (r *Registry) Normalize(schemeID, code string) (string, error) {
	if _, ok := r.schemes[schemeID]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, schemeID)
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := r.Label(schemeID, code); ok {
		return code, nil
	}
	if mapped, ok := legacyMapping[code]; ok {
		if _, ok := r.Label(schemeID, mapped); ok {
			return mapped, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCode, code)
}
