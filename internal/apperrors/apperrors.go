// Package apperrors defines the error kinds surfaced by the service layer.
// Every failure returned to an HTTP caller carries one stable Kind, so
// handlers never have to match on message text.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind is a machine-readable error code.
type Kind string

const (
	KindInternal              Kind = "INTERNAL"
	KindUnauthenticated       Kind = "UNAUTHENTICATED"
	KindPermissionDenied      Kind = "PERMISSION_DENIED"
	KindForbidden             Kind = "FORBIDDEN"
	KindNotFound              Kind = "NOT_FOUND"
	KindInvalidContent        Kind = "INVALID_CONTENT"
	KindValidation            Kind = "VALIDATION"
	KindConflict              Kind = "CONFLICT"
	KindAlreadyRegistered     Kind = "ALREADY_REGISTERED"
	KindDuplicateActiveInvite Kind = "DUPLICATE_ACTIVE_INVITE"
	KindAlreadyUsed           Kind = "ALREADY_USED"
	KindExpired               Kind = "EXPIRED"
	KindEmailMismatch         Kind = "EMAIL_MISMATCH"
	KindNotificationFailed    Kind = "NOTIFICATION_FAILED"
	KindPostNotPublished      Kind = "POST_NOT_PUBLISHED"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t == e || (t.Message == "" && t.Kind == e.Kind)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrUnauthenticated       = &Error{Kind: KindUnauthenticated}
	ErrPermissionDenied      = &Error{Kind: KindPermissionDenied}
	ErrForbidden             = &Error{Kind: KindForbidden}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrInvalidContent        = &Error{Kind: KindInvalidContent}
	ErrValidation            = &Error{Kind: KindValidation}
	ErrConflict              = &Error{Kind: KindConflict}
	ErrAlreadyRegistered     = &Error{Kind: KindAlreadyRegistered}
	ErrDuplicateActiveInvite = &Error{Kind: KindDuplicateActiveInvite}
	ErrAlreadyUsed           = &Error{Kind: KindAlreadyUsed}
	ErrExpired               = &Error{Kind: KindExpired}
	ErrEmailMismatch         = &Error{Kind: KindEmailMismatch}
	ErrNotificationFailed    = &Error{Kind: KindNotificationFailed}
	ErrPostNotPublished      = &Error{Kind: KindPostNotPublished}
)

// KindOf extracts the kind from any error. Unknown errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// FieldsOf returns per-field details attached to err, if any.
func FieldsOf(err error) []FieldError {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// HTTPStatus maps a kind to the response status used by the API.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated, KindPermissionDenied:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidContent, KindValidation, KindConflict,
		KindAlreadyRegistered, KindDuplicateActiveInvite,
		KindAlreadyUsed, KindExpired, KindEmailMismatch,
		KindPostNotPublished:
		return http.StatusBadRequest
	case KindNotificationFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
