package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrUniqueViolation is returned when an insert or update hits a unique
// constraint (user email, invite code, post slug, tag slug).
var ErrUniqueViolation = errors.New("unique constraint violation")

// ErrActiveInviteExists is returned when an unused, unexpired invite
// already exists for the email being invited.
var ErrActiveInviteExists = errors.New("active invite exists")

// ErrInviteUsed is returned when a conditional consume finds the invite
// already marked as used.
var ErrInviteUsed = errors.New("invite already used")

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
