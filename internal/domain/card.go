package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card represents a task on a group's board. Code is the short board-facing
// identifier, unique within the group and immutable once assigned; the UUID
// primary key stays internal. The (group_id, code) unique index is what turns
// a lost allocation race into a retryable conflict.
type Card struct {
	BaseModel
	GroupID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_cards_group_id;uniqueIndex:uq_cards_group_code" json:"group_id"`
	ColumnID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_cards_column_id" json:"column_id"`
	Code        string     `gorm:"type:varchar(6);not null;uniqueIndex:uq_cards_group_code" json:"code"`
	Title       string     `gorm:"type:varchar(100);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid;index:idx_cards_assignee_id" json:"assignee_id"`
	StartDate   *time.Time `gorm:"type:timestamp" json:"start_date"`
	EndDate     *time.Time `gorm:"type:timestamp" json:"end_date"`

	Column   ColumnBoard `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"column,omitempty"`
	Assignee *User       `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
	Tags     []CardTag   `gorm:"many2many:card_tag_assignments;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

// TableName specifies the table name for Card
func (Card) TableName() string {
	return "cards"
}

// GroupRef implements GroupScoped
func (c *Card) GroupRef() uuid.UUID {
	return c.GroupID
}
