// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account that can log in and own audio files.
//
// Role is one of "member", "admin" or "master". Exactly one master account
// exists; it is created at bootstrap and is protected from deletion and
// role reassignment.
type User struct {
	ID           string
	Username     string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}
