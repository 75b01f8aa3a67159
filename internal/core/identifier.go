package core

import (
	"errors"
	"math/rand/v2"
	"strconv"
)

const (
	minID int64 = 100000000000
	maxID int64 = 999999999999

	// MaxIDAttempts bounds the redraw loop used when an identifier collides
	// with one already present in the store.
	MaxIDAttempts = 1_000_000
)

// ErrIDSpaceExhausted is returned when no unused identifier was drawn within
// the configured number of attempts.
var ErrIDSpaceExhausted = errors.New("identifier space exhausted")

// IDSource draws a candidate identifier. Values outside the 12-digit range
// are folded back into it.
type IDSource func() int64

func defaultIDSource() int64 {
	return minID + rand.Int64N(maxID-minID+1)
}

// GenerateID draws identifiers until one is not reported as taken by exists.
func GenerateID(exists func(string) bool, draw IDSource, maxAttempts int) (string, error) {
	if draw == nil {
		draw = defaultIDSource
	}
	if maxAttempts <= 0 {
		maxAttempts = MaxIDAttempts
	}
	for range maxAttempts {
		id := strconv.FormatInt(foldID(draw()), 10)
		if exists == nil || !exists(id) {
			return id, nil
		}
	}
	return "", ErrIDSpaceExhausted
}

func foldID(n int64) int64 {
	if n >= minID && n <= maxID {
		return n
	}
	span := maxID - minID + 1
	n %= span
	if n < 0 {
		n += span
	}
	return minID + n
}
