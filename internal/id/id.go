package id

import "github.com/google/uuid"

// GenerateID returns a random UUIDv4 string.
// Session tokens use it to tell a live run apart from a discarded one.
func GenerateID() string {
	return uuid.NewString()
}
