package users

import "time"

const RoleAdmin = "admin"

// User is an account allowed to sign in. Password holds a bcrypt hash.
type User struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"not null;uniqueIndex:idx_users_name"`
	Password string `gorm:"not null"`
	Role     string `gorm:"type:varchar(20);not null;default:'admin'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
