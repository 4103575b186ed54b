package domain

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleParent Role = "parent"
)

type Admin struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Parent struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PupilID   *string   `json:"pupil_id"`
	IsHidden  bool      `json:"is_hidden"`
	CreatedAt time.Time `json:"created_at"`
}

// ParentCredential is the password state of a parent. Only the auth service
// reads it; every other component works with Parent.
type ParentCredential struct {
	ParentID            uint
	Email               string
	PasswordHash        string
	ForcePasswordChange bool
	PasswordChangedAt   *time.Time
	TokenVersion        int
}

// MustChangePassword reports whether the parent is still in the forced
// password change state.
func (c ParentCredential) MustChangePassword() bool {
	return c.ForcePasswordChange
}

// Principal is the identity resolved from a verified token.
type Principal struct {
	Subject      uint
	Role         Role
	TokenVersion int
}
