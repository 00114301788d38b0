package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes surfaced as client errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewMissingField reports a required field that was absent or null.
func NewMissingField(field string) error {
	return NewDomainError("MISSING_REQUIRED_FIELD", fmt.Sprintf("%s is required", field), http.StatusBadRequest,
		map[string]any{"field": field})
}

// NewInvalidField reports a field whose value could not be accepted.
func NewInvalidField(field, reason string) error {
	msg := fmt.Sprintf("invalid %s", field)
	if reason != "" {
		msg = fmt.Sprintf("invalid %s: %s", field, reason)
	}
	return NewDomainError("INVALID_FIELD", msg, http.StatusBadRequest, map[string]any{"field": field})
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &DomainError{
				Code:       "CONFLICT",
				Message:    "resource already exists",
				HTTPStatus: http.StatusConflict,
				Details:    map[string]any{"constraint": pgErr.ConstraintName},
				Err:        err,
			}
		case pgForeignKeyViolation:
			return &DomainError{
				Code:       "INVALID_FIELD",
				Message:    "referenced entity does not exist",
				HTTPStatus: http.StatusBadRequest,
				Details:    map[string]any{"field": fieldFromConstraint(pgErr.TableName, pgErr.ConstraintName)},
				Err:        err,
			}
		}
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// MapDeleteError converts errors from removing a row. A foreign-key violation there means another
// row still points at the target, which is a conflict rather than a bad field.
func MapDeleteError(err error, resource string, id int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound(resource, map[string]any{"id": id})
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return &DomainError{
			Code:       "CONFLICT",
			Message:    fmt.Sprintf("%s is still referenced", resource),
			HTTPStatus: http.StatusConflict,
			Details:    map[string]any{"id": id, "referenced_by": pgErr.TableName, "constraint": pgErr.ConstraintName},
			Err:        err,
		}
	}
	return ToDomainError(err)
}

// IsNotFound reports whether err resolves to a 404.
func IsNotFound(err error) bool {
	de := ToDomainError(err)
	return de != nil && de.HTTPStatus == http.StatusNotFound
}

// fieldFromConstraint turns ("tickets", "tickets_department_id_fkey") into "department_id".
func fieldFromConstraint(table, name string) string {
	field := strings.TrimSuffix(name, "_fkey")
	if table != "" {
		field = strings.TrimPrefix(field, table+"_")
	}
	return field
}
