package entity

import (
	"time"
)

// User roles. Admins may moderate builds and suggestions and write to the
// catalog; everything else is open to any authenticated user.
const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

// User is an account able to assemble and review builds.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Username     string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	DisplayName  string     `json:"display_name" gorm:"size:64;not null"`
	Email        string     `json:"email" gorm:"size:128"`
	AvatarURL    string     `json:"avatar_url" gorm:"size:512"`
	Role         string     `json:"role" gorm:"size:16;not null;default:user;check:role IN ('user','admin')"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
