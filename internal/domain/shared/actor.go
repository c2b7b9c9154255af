package shared

import (
	"strings"

	"github.com/google/uuid"
)

// Role is a staff role. Roles are ordered: admin can do everything a
// manager can, and a manager everything staff can.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

var roleRank = map[Role]int{
	RoleStaff:   1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// ParseRole parses a role name, case-insensitively
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := roleRank[r]
	return r, ok
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && roleRank[min] > 0
}

// Actor identifies the staff member performing an operation.
// It is passed explicitly into every application service call.
type Actor struct {
	StaffID  uuid.UUID
	Username string
	Role     Role
}

// NewActor creates an actor
func NewActor(staffID uuid.UUID, username string, role Role) Actor {
	return Actor{StaffID: staffID, Username: username, Role: role}
}

// Validate checks that the actor carries a staff identity
func (a Actor) Validate() error {
	if a.StaffID == uuid.Nil {
		return NewDomainError(CodeUnauthorized, "Acting staff member is required")
	}
	return nil
}

// IsManager reports whether the actor has manager privileges
func (a Actor) IsManager() bool {
	return a.Role.AtLeast(RoleManager)
}
