// Package model defines the core domain types for the DIRE session server.
package model

// Role is a user's coarse permission tier. GM unlocks roster-management
// actions; everyone else is a player.
type Role string

const (
	RolePlayer Role = "player"
	RoleGM     Role = "GM"
)

// ParseRole converts a wire string to a Role. Anything that is not
// exactly "GM" is a player.
func ParseRole(s string) Role {
	if s == string(RoleGM) {
		return RoleGM
	}
	return RolePlayer
}

// Valid reports whether the role is one of the two recognized tiers.
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleGM
}

func (r Role) String() string { return string(r) }
