package domain

import "time"

// Role names are free-form strings from the users table; these are the two
// the console ships with.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	ID           string
	Username     string
	Email        string
	Name         string
	PasswordHash string // argon2 encoded
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
