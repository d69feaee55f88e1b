package domain

// Role is the closed set of principal roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// TaskStatus is the closed set of task states.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Caller is the authenticated identity of a request, derived once from
// verified token claims at the HTTP boundary and passed down explicitly.
type Caller struct {
	ID       uint
	Username string
	Role     Role
}

// CanAccess is the ownership policy applied to every resource operation:
// admins may access anything, everyone else only what they own.
// The role check comes first so an admin never needs the owner comparison.
func (c Caller) CanAccess(ownerID uint) bool {
	if c.Role == RoleAdmin {
		return true
	}
	return c.ID == ownerID
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
