package roles

// Role names carried in bearer token claims.
const (
	Readonly = "readonly"
	Staff    = "staff"
	Manager  = "manager"
)

// Permission names checked by route guards.
const (
	ItemsRead   = "items:read"
	ItemsCreate = "items:create"
	ItemsUpdate = "items:update"
	ItemsDelete = "items:delete"
)

// Role describes a role and the permissions it grants.
type Role struct {
	Name        string            `json:"name"`
	Labels      map[string]string `json:"labels"`
	Permissions []string          `json:"permissions"`
}
