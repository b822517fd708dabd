package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string. IDs are version 7 UUIDs,
// so within one process they sort in the order they were generated.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
