package dto

// CreateTagRequest is the payload for explicitly creating a tag
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"required,max=20"`
}

// UpdateTagRequest is the payload for renaming or recoloring a tag.
// The code is immutable and never part of an update.
type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty" binding:"omitempty,max=50"`
	Color *string `json:"color,omitempty" binding:"omitempty,max=20"`
}

// TagResponse is a tag as returned to clients
type TagResponse struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CreateUserTagRelationRequest assigns an existing user tag to a member
type CreateUserTagRelationRequest struct {
	Username string `json:"username" binding:"required"`
	TagCode  string `json:"tag" binding:"required"`
}

// UserTagRelationResponse is a user-tag assignment as returned to clients
type UserTagRelationResponse struct {
	Username string      `json:"username"`
	Tag      TagResponse `json:"tag"`
}
