// Package uuid generates and checks the identifiers used as primary keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New generates a UUIDv7. Version 7 ids start with a millisecond timestamp,
// so they sort roughly by creation time and index well as primary keys.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// NewV7 only fails when crypto/rand does.
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates a UUID string and returns its canonical lowercase form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
