package models

import "time"

// User represents a registered account.
type User struct {
	ID             string     `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Username       string     `json:"Username" gorm:"uniqueIndex;type:varchar(100)"`
	PasswordHash   string     `json:"-" gorm:"column:password;type:varchar(255)"` // never serialized
	Email          string     `json:"Email" gorm:"type:varchar(255)"`
	Birthday       *time.Time `json:"Birthday,omitempty"`
	FavoriteMovies []string   `json:"FavoriteMovies" gorm:"serializer:json"`
}

// Identity is the verified caller reconstructed from a bearer token.
type Identity struct {
	UserID    string
	Username  string
	IssuedAt  time.Time
	ExpiresAt *time.Time
}
