package domain

import "github.com/google/uuid"

// ColumnBoard represents one column of a group's kanban board.
// Column names are unique within their group; deleting a column deletes the
// cards in it (enforced by the card foreign key cascade).
type ColumnBoard struct {
	BaseModel
	GroupID uuid.UUID `gorm:"type:uuid;not null;index:idx_columns_group_id;uniqueIndex:uq_columns_group_name" json:"group_id"`
	Name    string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_columns_group_name" json:"name"`
	Color   string    `gorm:"type:varchar(20);not null" json:"color"`

	Cards []Card `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"cards,omitempty"`
}

// TableName specifies the table name for ColumnBoard
func (ColumnBoard) TableName() string {
	return "column_boards"
}

// GroupRef implements GroupScoped
func (c *ColumnBoard) GroupRef() uuid.UUID {
	return c.GroupID
}
