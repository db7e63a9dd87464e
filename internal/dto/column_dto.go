package dto

// CreateColumnRequest is the payload for creating a board column
type CreateColumnRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"required,max=20"`
}

// UpdateColumnRequest is the payload for updating a column.
// Nil fields are left untouched.
type UpdateColumnRequest struct {
	Name  *string `json:"name,omitempty" binding:"omitempty,max=50"`
	Color *string `json:"color,omitempty" binding:"omitempty,max=20"`
}

// ColumnResponse is a column as returned to clients
type ColumnResponse struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Color      string `json:"color"`
}
