package models

// Group represents a named set of people who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the unique display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Members is the list of user names in the order they joined.
	// Membership only grows.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
