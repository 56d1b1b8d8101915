// Package id generates identifiers for persisted records.
package id

import "github.com/google/uuid"

// New returns a time-ordered UUIDv7 string.
func New() string {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v.String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
