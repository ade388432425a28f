package model

import "strings"

// User is the signed-in user's profile as returned by the backend.
type User struct {
	// ID is the profile identifier.
	ID string `json:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"firstName"`

	// LastName is the user's family name.
	LastName string `json:"lastName"`

	// ImageURL points to the user's avatar image.
	ImageURL string `json:"imageUrl"`
}

// FullName returns "FirstName LastName" with empty parts omitted.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
