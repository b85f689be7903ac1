package models

import "slices"

// Group represents a set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group.
	ID int64 `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string `json:"name"`

	// MemberIDs lists the users in this group. Order is irrelevant and IDs are unique.
	MemberIDs []int64 `json:"member_ids"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID int64) bool {
	return slices.Contains(g.MemberIDs, userID)
}
