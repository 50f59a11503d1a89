package models

// User represents a registered person who can join groups.
type User struct {
	// Name is the unique display name; it is the user's identity.
	Name string

	// Email is the user's contact address.
	Email string

	// CreatedAt is the Unix timestamp when the user was registered.
	CreatedAt int64
}
