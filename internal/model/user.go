package model

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`

	// Optional profile fields
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`

	Humidors []Humidor `json:"-"`
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"username":     u.Username,
		"display_name": u.DisplayName,
		"avatar":       u.Avatar,
		"created_at":   u.CreatedAt,
	}
}
