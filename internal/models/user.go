package models

import "time"

// User represents a registered person.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the user's email address (unique).
	// Used for login.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64 `json:"created_at"`
}

// NewUser creates a user record ready to be persisted.
// The ID is assigned by the store.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
