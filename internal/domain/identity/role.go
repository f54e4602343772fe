package identity

// Role represents a user's authority tier in the warehouse organisation.
// The tiers form a strict ladder used by the document approval chain.
type Role string

const (
	RoleUser           Role = "ROLE_USER"       // view and apply only
	RoleSquadLeader    Role = "SQUAD_LEADER"    // first approval gate
	RoleTeamLeader     Role = "TEAM_LEADER"     // second approval gate
	RoleWarehouseAdmin Role = "WAREHOUSE_ADMIN" // final approval gate
	RoleAdmin          Role = "ROLE_ADMIN"      // may approve at any gate
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleSquadLeader, RoleTeamLeader, RoleWarehouseAdmin, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// rank maps each role to its position on the authority ladder.
// Unknown roles rank below every valid role.
func (r Role) rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleSquadLeader:
		return 2
	case RoleTeamLeader:
		return 3
	case RoleWarehouseAdmin:
		return 4
	case RoleAdmin:
		return 5
	}
	return 0
}

// AtLeast returns true if the role's authority is equal to or above the other role's
func (r Role) AtLeast(other Role) bool {
	return r.rank() >= other.rank()
}

// IsAdmin returns true for the top-level administrator role
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// HasApprovalAuthority returns true if the role may participate in any approval gate
func (r Role) HasApprovalAuthority() bool {
	return r.AtLeast(RoleSquadLeader)
}
