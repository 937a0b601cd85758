// Package uuid provides ID generation helpers.
package uuid

import (
	"github.com/google/uuid"
)

// Generator creates time-ordered UUID strings for request correlation.
type Generator struct{}

// New creates a new Generator.
func New() Generator {
	return Generator{}
}

// NewID returns a UUIDv7 string, or a random UUIDv4 if the v7 clock source fails.
func (Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
