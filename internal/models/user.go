package models

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;size:255" json:"email"`
	Username       string    `gorm:"uniqueIndex;size:100" json:"username"`
	HashedPassword string    `json:"-"`
	Role           string    `gorm:"size:16;default:user" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
