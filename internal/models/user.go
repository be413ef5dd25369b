package models

import "time"

// Role is the closed set of access levels. Anything else is rejected at
// the authorization gate.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleReader Role = "reader"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReader:
		return true
	}
	return false
}

// User is a credential record in the users table. Created at registration,
// read at authentication, never mutated by the auth core.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Active       bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Principal is the resolved identity attached to a request. Built fresh
// per request from a validated access token plus a credential-store read;
// never persisted.
type Principal struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Active   bool   `json:"is_active"`
}
