// Package idgen generates the short, URL-safe ids casegraph hands out for
// view sessions and export snapshots.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Id prefixes by kind.
const (
	PrefixView     = "view-"
	PrefixSnapshot = "snap-"
)

// alphabet is the character set of the random part.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters after the prefix.
const Length = 12

// NewViewID returns a fresh view session id.
func NewViewID() (string, error) {
	return withPrefix(PrefixView)
}

// NewSnapshotID returns a fresh id for an exported layout snapshot.
func NewSnapshotID() (string, error) {
	return withPrefix(PrefixSnapshot)
}

// IsViewID reports whether id has the shape of a view session id.
func IsViewID(id string) bool {
	rest, ok := strings.CutPrefix(id, PrefixView)
	if !ok || len(rest) != Length {
		return false
	}
	for _, r := range rest {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}

func withPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
