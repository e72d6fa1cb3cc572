package enums

import "fmt"

// ActorRole identifies which side of the marketplace a caller acts for.
type ActorRole string

const (
	ActorRoleBuyer  ActorRole = "BUYER"
	ActorRoleSeller ActorRole = "SELLER"
)

var validActorRoles = []ActorRole{
	ActorRoleBuyer,
	ActorRoleSeller,
}

func (r ActorRole) String() string { return string(r) }

// IsValid reports whether the role is one of the supported values.
func (r ActorRole) IsValid() bool {
	for _, v := range validActorRoles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseActorRole converts a raw string into an ActorRole.
func ParseActorRole(raw string) (ActorRole, error) {
	role := ActorRole(raw)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid actor role %q", raw)
	}
	return role, nil
}
