package dto

import "time"

// TagSpec identifies a tag by content. Card payloads carry tag specs, not
// codes: the tag index resolves each spec to an existing tag or creates one.
type TagSpec struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"required,max=20"`
}

// CreateCardRequest is the payload for creating a card
type CreateCardRequest struct {
	ColumnName  string     `json:"column" binding:"required"`
	Title       string     `json:"title" binding:"required,max=100"`
	Description string     `json:"description" binding:"max=700"`
	Assignee    *string    `json:"assignee,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Tags        []TagSpec  `json:"tags,omitempty"`
}

// UpdateCardRequest is the payload for partially updating a card. Nil fields
// are left untouched. Tags is a pointer to a slice on purpose: an absent
// field keeps the card's tags, a present empty list clears them, and a
// present non-empty list replaces them.
type UpdateCardRequest struct {
	ColumnName  *string    `json:"column,omitempty"`
	Title       *string    `json:"title,omitempty" binding:"omitempty,max=100"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=700"`
	Assignee    *string    `json:"assignee,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Tags        *[]TagSpec `json:"tags,omitempty"`
}

// CardResponse is a card as returned by card endpoints
type CardResponse struct {
	Code        string        `json:"code"`
	Column      string        `json:"column"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Assignee    *string       `json:"assignee"`
	StartDate   *time.Time    `json:"start_date"`
	EndDate     *time.Time    `json:"end_date"`
	Tags        []TagResponse `json:"tags"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CardListResponse wraps the card collection of a group
type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
}
