// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the record kinds that get generated IDs.
const (
	NodePrefix    = "nd-"
	RequestPrefix = "rq-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// NewNodeID returns a new unique node ID.
func NewNodeID() (string, error) {
	return generate(NodePrefix)
}

// NewRequestID returns a new unique request ID.
func NewRequestID() (string, error) {
	return generate(RequestPrefix)
}

func generate(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
