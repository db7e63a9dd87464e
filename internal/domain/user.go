package domain

// User represents an account known to the board service.
// Authentication and password handling live in the auth service; this side
// only stores the identity fields membership and assignment refer to.
type User struct {
	BaseModel
	Username    string `gorm:"type:varchar(150);not null;uniqueIndex:uq_users_username" json:"username"`
	Email       string `gorm:"type:varchar(254);not null" json:"email"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
