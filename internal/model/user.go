package model

import (
	"errors"
	"time"
)

// User represents a registered account. The external identity (Google
// subject) is never stored in plaintext, only a bcrypt hash of it.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	IdentityHash string    `db:"identity_hash" json:"-"` // "-" hides from JSON output
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url"`
	MemberSince  time.Time `db:"member_since" json:"member_since"`
}

// UserIdentity is the minimal projection the identity resolver scans.
type UserIdentity struct {
	ID           int64  `db:"id"`
	IdentityHash string `db:"identity_hash"`
}

// RegisterRequest is the request body for POST /register.
// The identity hash comes from the pending-identity token, not the body.
type RegisterRequest struct {
	Username string `json:"username"`
}

// Profile is the current user together with their own posts.
type Profile struct {
	User  *User  `json:"user"`
	Posts []Post `json:"posts"`
}

const MaxUsernameLength = 30

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to register a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrIdentityExists is returned when the external identity already has an account
	ErrIdentityExists = errors.New("identity already registered")

	// ErrUsernameInvalid is returned for empty or over-long usernames
	ErrUsernameInvalid = errors.New("invalid username")
)
