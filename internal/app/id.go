package app

import "github.com/google/uuid"

// generateID returns a random identifier for wizard and identity sessions.
func generateID() string {
	return uuid.NewString()
}
