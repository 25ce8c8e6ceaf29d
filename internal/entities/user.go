package entities

import "time"

type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"uniqueIndex;size:100" json:"username"`
	Email          string     `gorm:"size:255" json:"email,omitempty"`
	TokenHash      string     `gorm:"index;size:64" json:"-"` // SHA-256 of the API token
	TokenCreatedAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
