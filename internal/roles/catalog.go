package roles

import (
	"sort"
	"strings"
)

// matrix lists the roles allowed per permission.
var matrix = map[string][]string{
	ItemsRead:   {Readonly, Staff, Manager},
	ItemsCreate: {Staff, Manager},
	ItemsUpdate: {Staff, Manager},
	ItemsDelete: {Manager},
}

var labels = map[string]map[string]string{
	Readonly: {"ko": "읽기 전용", "en": "Read Only", "zh": "只读"},
	Staff:    {"ko": "직원", "en": "Staff", "zh": "员工"},
	Manager:  {"ko": "관리자", "en": "Manager", "zh": "管理员"},
}

var roleOrder = []string{Readonly, Staff, Manager}

// Catalog returns every role with its sorted permissions.
func Catalog() []Role {
	out := make([]Role, 0, len(roleOrder))
	for _, name := range roleOrder {
		out = append(out, Role{
			Name:        name,
			Labels:      labels[name],
			Permissions: PermissionsFor(name),
		})
	}
	return out
}

// PermissionsFor returns the union of permissions granted to the roles.
// Unknown roles grant nothing.
func PermissionsFor(roleNames ...string) []string {
	held := make(map[string]struct{}, len(roleNames))
	for _, r := range roleNames {
		held[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}
	var perms []string
	for perm, allowed := range matrix {
		for _, r := range allowed {
			if _, ok := held[r]; ok {
				perms = append(perms, perm)
				break
			}
		}
	}
	sort.Strings(perms)
	return perms
}

// HasPermission reports whether any of the roles grants perm.
func HasPermission(roleNames []string, perm string) bool {
	allowed, ok := matrix[perm]
	if !ok {
		return false
	}
	for _, r := range roleNames {
		r = strings.ToLower(strings.TrimSpace(r))
		for _, a := range allowed {
			if r == a {
				return true
			}
		}
	}
	return false
}
