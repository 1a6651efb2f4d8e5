package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opsdesk/ticket-service/internal/domain"
)

// Postgres error codes surfaced by the driver.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DomainError standardizes application errors. Code is the external error
// label rendered in the response body.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Field      string
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

// NewValidationError reports malformed or out-of-range input.
func NewValidationError(message, field string) error {
	return &DomainError{
		Code:       "Validation failed",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Field:      field,
	}
}

// NewInvalidIdentifier reports a malformed display identifier.
func NewInvalidIdentifier(message string) error {
	return &DomainError{
		Code:       "Bad Request",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound reports a legitimately absent resource.
func NewNotFound(message string) error {
	return &DomainError{
		Code:       "Not Found",
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflict reports a storage-level uniqueness violation.
func NewConflict(message string) error {
	return &DomainError{
		Code:       "Conflict",
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewReferentialError reports a foreign-key violation.
func NewReferentialError(message string) error {
	return &DomainError{
		Code:       "Bad Request",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInternalError wraps anything else.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       "Internal Server Error",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError, translating driver
// and identifier errors along the way.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var invalidID *domain.ErrInvalidTicketID
	if errors.As(err, &invalidID) {
		return NewInvalidIdentifier(invalidID.Error()).(*DomainError)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return NewConflict("Resource already exists").(*DomainError)
		case pgForeignKeyViolation:
			return NewReferentialError("Referenced resource does not exist").(*DomainError)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource not found").(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// MapError is a convenience wrapper around ToDomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
