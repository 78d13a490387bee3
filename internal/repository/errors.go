package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrCacheMiss is returned when a cache key is absent or the cache is disabled.
	ErrCacheMiss = errors.New("cache miss")
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrDuplicateReview is returned when a (teacher, user) review pair already exists.
	ErrDuplicateReview = errors.New("review already exists")
	// ErrDuplicateAccount is returned when a user name or email is already taken.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrBookingStateChanged is returned when a conditional booking write lost a race.
	ErrBookingStateChanged = errors.New("booking state changed")
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// IsMalformedID reports whether Postgres rejected a lookup key that does not parse as a
// UUID. No row can match such a key.
func IsMalformedID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
