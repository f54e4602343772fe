package document

import (
	"github.com/warehouse/backend/internal/domain/identity"
)

// ApprovalStatus represents where a business document sits in its approval lifecycle.
// The happy path is DRAFT → PENDING → SQUAD_APPROVED → TEAM_APPROVED → APPROVED → EXECUTED.
// REJECTED, CANCELLED and EXPIRED are terminal from any non-terminal state.
type ApprovalStatus string

const (
	StatusDraft         ApprovalStatus = "DRAFT"
	StatusPending       ApprovalStatus = "PENDING"
	StatusSquadApproved ApprovalStatus = "SQUAD_APPROVED"
	StatusTeamApproved  ApprovalStatus = "TEAM_APPROVED"
	// StatusInProgress is a legacy alias kept for documents persisted by older
	// releases; it behaves like PENDING for every predicate below.
	StatusInProgress ApprovalStatus = "IN_PROGRESS"
	StatusApproved   ApprovalStatus = "APPROVED"
	StatusExecuted   ApprovalStatus = "EXECUTED"
	StatusRejected   ApprovalStatus = "REJECTED"
	StatusCancelled  ApprovalStatus = "CANCELLED"
	StatusExpired    ApprovalStatus = "EXPIRED"
)

// IsValid checks if the status is a valid ApprovalStatus
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusSquadApproved, StatusTeamApproved,
		StatusInProgress, StatusApproved, StatusExecuted, StatusRejected,
		StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// String returns the string representation of ApprovalStatus
func (s ApprovalStatus) String() string {
	return string(s)
}

// CanApprove returns true while the document sits at an approval gate
func (s ApprovalStatus) CanApprove() bool {
	switch s {
	case StatusPending, StatusSquadApproved, StatusTeamApproved, StatusInProgress:
		return true
	}
	return false
}

// CanExecute returns true only once the full approval chain has passed
func (s ApprovalStatus) CanExecute() bool {
	return s == StatusApproved
}

// CanCancel returns true at any point before the document has been executed.
// APPROVED documents may still be cancelled as long as execution has not moved
// them to EXECUTED.
func (s ApprovalStatus) CanCancel() bool {
	switch s {
	case StatusDraft, StatusPending, StatusSquadApproved, StatusTeamApproved,
		StatusInProgress, StatusApproved:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that permit no further transitions
func (s ApprovalStatus) IsTerminal() bool {
	switch s {
	case StatusExecuted, StatusRejected, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Next returns the status reached by a successful approval at the current gate.
// Statuses outside the approval chain return themselves.
func (s ApprovalStatus) Next() ApprovalStatus {
	switch s {
	case StatusDraft:
		return StatusPending
	case StatusPending, StatusInProgress:
		return StatusSquadApproved
	case StatusSquadApproved:
		return StatusTeamApproved
	case StatusTeamApproved:
		return StatusApproved
	}
	return s
}

// RoleMayApprove reports whether the acting role has authority at the current
// approval gate. Each gate requires a minimum tier; the top-level admin role
// clears every gate.
func (s ApprovalStatus) RoleMayApprove(role identity.Role) bool {
	if role.IsAdmin() {
		return s.CanApprove()
	}
	switch s {
	case StatusPending, StatusInProgress:
		return role.AtLeast(identity.RoleSquadLeader)
	case StatusSquadApproved:
		return role.AtLeast(identity.RoleTeamLeader)
	case StatusTeamApproved:
		return role.AtLeast(identity.RoleWarehouseAdmin)
	}
	return false
}
