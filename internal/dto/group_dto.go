package dto

import "time"

// CreateGroupRequest is the payload for creating a group
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=30"`
	Description string `json:"description" binding:"max=200"`
}

// UpdateGroupRequest is the payload for updating group metadata.
// Nil fields are left untouched.
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=30"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=200"`
}

// AddMemberRequest is the payload for adding a user to a group by username
type AddMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

// GroupResponse is the group metadata returned to clients. The internal UUID
// never appears here; GroupUUID is the public short identifier.
type GroupResponse struct {
	GroupUUID   string           `json:"group_uuid"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Admin       *string          `json:"admin"`
	Members     []MemberResponse `json:"members"`
	CreatedAt   time.Time        `json:"created_at"`
}

// MemberResponse is one entry of a group's member list. Tags always carries
// a list, empty when the member has no user tags.
type MemberResponse struct {
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Tags     []TagResponse `json:"tags"`
}

// GroupDetailResponse is the group detail view including the assembled board
type GroupDetailResponse struct {
	GroupResponse
	Board BoardView `json:"board"`
}
