package domain

import "github.com/google/uuid"

// TagKind selects which tag namespace of a group an operation works on.
// Card tags and user tags carry the same shape but draw their codes from
// separate sequences, so the same code can exist once in each namespace.
type TagKind string

const (
	TagKindCard TagKind = "card"
	TagKindUser TagKind = "user"
)

// CardTag is a label attachable to cards of its group. No two card tags in
// one group share (name, color); the unique index backs the tag index's
// get-or-create semantics under concurrent writers.
type CardTag struct {
	BaseModel
	GroupID uuid.UUID `gorm:"type:uuid;not null;index:idx_card_tags_group_id;uniqueIndex:uq_card_tags_group_code;uniqueIndex:uq_card_tags_group_name_color" json:"group_id"`
	Code    string    `gorm:"type:varchar(6);not null;uniqueIndex:uq_card_tags_group_code" json:"code"`
	Name    string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_card_tags_group_name_color" json:"name"`
	Color   string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_card_tags_group_name_color" json:"color"`
}

// TableName specifies the table name for CardTag
func (CardTag) TableName() string {
	return "card_tags"
}

// GroupRef implements GroupScoped
func (t *CardTag) GroupRef() uuid.UUID {
	return t.GroupID
}

// UserTag is a label attachable to members of its group, namespaced
// independently from card tags.
type UserTag struct {
	BaseModel
	GroupID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_tags_group_id;uniqueIndex:uq_user_tags_group_code;uniqueIndex:uq_user_tags_group_name_color" json:"group_id"`
	Code    string    `gorm:"type:varchar(6);not null;uniqueIndex:uq_user_tags_group_code" json:"code"`
	Name    string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_user_tags_group_name_color" json:"name"`
	Color   string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_user_tags_group_name_color" json:"color"`
}

// TableName specifies the table name for UserTag
func (UserTag) TableName() string {
	return "user_tags"
}

// GroupRef implements GroupScoped
func (t *UserTag) GroupRef() uuid.UUID {
	return t.GroupID
}

// UserTagRelation assigns one user tag to one group member. The member check
// happens at creation time only; removing the user from the group later does
// not clear existing relations.
type UserTagRelation struct {
	BaseModel
	GroupID   uuid.UUID `gorm:"type:uuid;not null;index:idx_user_tag_relations_group_id" json:"group_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_tag_relations_user_id;uniqueIndex:uq_user_tag_relations_user_tag" json:"user_id"`
	UserTagID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_tag_relations_user_tag" json:"user_tag_id"`

	User *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Tag  *UserTag `gorm:"foreignKey:UserTagID;constraint:OnDelete:CASCADE" json:"tag,omitempty"`
}

// TableName specifies the table name for UserTagRelation
func (UserTagRelation) TableName() string {
	return "user_tag_relations"
}

// GroupRef implements GroupScoped
func (r *UserTagRelation) GroupRef() uuid.UUID {
	return r.GroupID
}
