package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group represents a team that owns one kanban board.
// PublicID is the short identifier clients address the group by; the UUID
// primary key never leaves the service.
//
// Deleting a group is a soft delete: the row (and everything scoped to it)
// becomes invisible immediately, and the purge job removes it permanently
// after the retention window, cascading to columns, cards and tags.
type Group struct {
	BaseModel
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	PublicID    string         `gorm:"type:varchar(32);not null;uniqueIndex:uq_groups_public_id" json:"group_uuid"`
	Name        string         `gorm:"type:varchar(30);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	AdminID     *uuid.UUID     `gorm:"type:uuid;index:idx_groups_admin_id" json:"admin_id"`

	Admin   *User         `gorm:"foreignKey:AdminID;constraint:OnDelete:SET NULL" json:"admin,omitempty"`
	Members []GroupMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Columns []ColumnBoard `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
	Cards   []Card        `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"cards,omitempty"`
}

// TableName specifies the table name for Group
func (Group) TableName() string {
	return "groups"
}

// IsAdmin reports whether the given user is the group's admin.
// A group whose admin reference was cleared has no admin at all.
func (g *Group) IsAdmin(userID uuid.UUID) bool {
	return g.AdminID != nil && *g.AdminID == userID
}

// GroupMember links a user to a group. The admin is conventionally also a
// member; membership alone is what grants read and write access to the
// group's board.
type GroupMember struct {
	BaseModel
	GroupID  uuid.UUID `gorm:"type:uuid;not null;index:idx_group_members_group_id;uniqueIndex:uq_group_members_group_user" json:"group_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_group_members_user_id;uniqueIndex:uq_group_members_group_user" json:"user_id"`
	JoinedAt time.Time `gorm:"type:timestamp;not null" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for GroupMember
func (GroupMember) TableName() string {
	return "group_members"
}

// GroupRef implements GroupScoped
func (m *GroupMember) GroupRef() uuid.UUID {
	return m.GroupID
}
