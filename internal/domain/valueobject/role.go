package valueobject

import (
	"strings"

	"github.com/oksasatya/user-account-service/pkg/apperr"
)

// Role is the hierarchical access level of a user. Higher rank implies every
// permission of the ranks below it.
type Role struct {
	value string
}

var (
	RoleUser      = Role{value: "USER"}
	RoleModerator = Role{value: "MODERATOR"}
	RoleAdmin     = Role{value: "ADMIN"}
)

var roleRanks = map[string]int{
	"USER":      1,
	"MODERATOR": 2,
	"ADMIN":     3,
}

// NewRole parses a role case-insensitively.
func NewRole(raw string) (Role, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := roleRanks[v]; !ok {
		return Role{}, apperr.Validation("INVALID_ROLE", "Invalid role, allowed values: USER, MODERATOR, ADMIN")
	}
	return Role{value: v}, nil
}

func (r Role) String() string { return r.value }

// HasPermission reports whether r grants at least the access of required.
func (r Role) HasPermission(required Role) bool {
	return roleRanks[r.value] >= roleRanks[required.value]
}
