package shared

// Window describes an offset based slice of a listing.
type Window struct {
	Skip  int
	Limit int
}

// Listing bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// NewWindow clamps skip/limit to sane bounds.
func NewWindow(skip, limit int) Window {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Window{Skip: skip, Limit: limit}
}
