package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs_MatchesByKind(t *testing.T) {
	err := New(KindExpired, "invitation code has expired")

	assert.True(t, errors.Is(err, ErrExpired))
	assert.False(t, errors.Is(err, ErrAlreadyUsed))

	wrapped := fmt.Errorf("redeem: %w", err)
	assert.True(t, errors.Is(wrapped, ErrExpired))
	assert.Equal(t, KindExpired, KindOf(wrapped))
}

func TestKindOf_UnknownIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestFieldsOf(t *testing.T) {
	err := Validation("invalid data", FieldError{Field: "email", Message: "must be a valid email"})

	fields := FieldsOf(fmt.Errorf("handler: %w", err))
	assert.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].Field)
	assert.Nil(t, FieldsOf(errors.New("plain")))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := Wrap(KindNotificationFailed, "failed to send invitation email", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrNotificationFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		KindUnauthenticated:       http.StatusUnauthorized,
		KindPermissionDenied:      http.StatusUnauthorized,
		KindForbidden:             http.StatusForbidden,
		KindNotFound:              http.StatusNotFound,
		KindInvalidContent:        http.StatusBadRequest,
		KindDuplicateActiveInvite: http.StatusBadRequest,
		KindEmailMismatch:         http.StatusBadRequest,
		KindPostNotPublished:      http.StatusBadRequest,
		KindNotificationFailed:    http.StatusInternalServerError,
		KindInternal:              http.StatusInternalServerError,
	}

	for kind, want := range tests {
		assert.Equal(t, want, HTTPStatus(kind), string(kind))
	}
}
