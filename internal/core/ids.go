package core

import "github.com/google/uuid"

// NewID returns a random opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// ShortID abbreviates an id for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
