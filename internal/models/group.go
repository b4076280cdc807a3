package models

// Member roles within a group.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Group represents a named collection of users who share expenses.
// A user must be a member to be charged within the group's expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Roommates").
	Name string `json:"name"`

	// Description is an optional free-form description.
	Description string `json:"description,omitempty"`

	// CreatedBy is the user ID of the group's creator. The creator is
	// always an admin member.
	CreatedBy string `json:"created_by"`

	// Members is the group's member set with roles. Populated on reads.
	Members []GroupMember `json:"members,omitempty"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64 `json:"updated_at"`
}

// GroupMember is one user's membership in a group.
type GroupMember struct {
	GroupID  string `json:"group_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"` // "admin" or "member"
	JoinedAt int64  `json:"joined_at"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether userID is an admin of the group.
func (g *Group) IsAdmin(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID && m.Role == RoleAdmin {
			return true
		}
	}
	return false
}
