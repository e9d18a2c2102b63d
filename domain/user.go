// Package domain contains core concepts of the direct-messaging system.
// This file defines User entries of the shared directory and the signed-in
// Identity. Users are created externally; only username changes propagate.
package domain

// User is one entry of the shared user directory.
type User struct {
	UID      string
	Username string
}

// Identity is the signed-in viewer, as resolved by the session provider.
type Identity struct {
	UID      string
	Username string
}
