package domain

import "github.com/google/uuid"

// Role is the marketplace role of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleLandlord Role = "landlord"
	RoleUser     Role = "user"
)

// ValidRoles lists every role the users table may hold.
var ValidRoles = []Role{RoleAdmin, RoleManager, RoleLandlord, RoleUser}

// IsValid reports whether r is one of ValidRoles.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// IsStaff is true for the moderation roles (admin, manager).
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

// ApprovalStatus is the account approval state of a user.
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalActive    ApprovalStatus = "active"
	ApprovalSuspended ApprovalStatus = "suspended"
	ApprovalRejected  ApprovalStatus = "rejected"
)

var validApprovalStatuses = []ApprovalStatus{ApprovalPending, ApprovalActive, ApprovalSuspended, ApprovalRejected}

func (s ApprovalStatus) IsValid() bool {
	for _, v := range validApprovalStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Actor is the verified caller of an operation. It is built once per request
// from a session or a bearer token and carries no behaviour of its own.
type Actor struct {
	ID             uuid.UUID      `json:"id"`
	Role           Role           `json:"role"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
}

// IsOwner reports whether the actor owns a record with the given owner id.
func (a *Actor) IsOwner(ownerID *uuid.UUID) bool {
	if a == nil || ownerID == nil {
		return false
	}
	return *ownerID == a.ID
}
