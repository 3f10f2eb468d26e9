package models

import "time"

const (
	RoleClient  = "client"
	RoleBarber  = "barber"
	RoleManager = "manager"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleClient, RoleBarber, RoleManager:
		return true
	}
	return false
}

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:'client'" json:"role"`
	Photo        string `gorm:"size:255" json:"photo"`
	Phone        string `gorm:"size:20;index" json:"phone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
