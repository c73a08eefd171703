package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Application error taxonomy. Controllers map these onto HTTP statuses
// with HTTPStatus; anything unrecognized is treated as a persistence
// failure and reported as 500 without leaking internals.

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return "validation: " + e.Message
}

type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	if e.Message == "" {
		return "permission denied"
	}
	return e.Message
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// EditForbiddenError marks a mutation attempted against a reservation in
// a terminal state (checked-out or cancelled).
type EditForbiddenError struct {
	Message string
}

func (e *EditForbiddenError) Error() string {
	if e.Message == "" {
		return "record can no longer be edited"
	}
	return e.Message
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// PersistenceError wraps a transaction/database failure after rollback.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence failure: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// HTTPStatus maps an application error to its response status.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		pe *PermissionError
		ne *NotFoundError
		ee *EditForbiddenError
		ce *ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &pe), errors.As(err, &ee):
		return http.StatusForbidden
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the body message for an error. Internal failures
// get a generic message so stack traces and SQL never leak.
func PublicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

// IsDuplicateKey detects a unique-constraint violation. MySQL errors are
// matched by number (1062); anything else falls back to a message check.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique") ||
		strings.Contains(msg, "constraint")
}
