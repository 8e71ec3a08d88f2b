package models

import "time"

// User is an operator account for the admin API.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // "admin" or "viewer"
	CreatedAt    time.Time `json:"created_at"`
}
