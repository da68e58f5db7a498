package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"community-backend/internal/logger"
)

// Kind classifies a service failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
	KindConflict
)

// Error is the uniform failure shape crossing the service boundary. Raw
// persistence and collaborator errors never escape; they are wrapped as
// KindInternal and logged with a correlation ID.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func UnauthorizedError(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func ConflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// InternalError logs the underlying failure at error severity with a
// correlation ID and returns an opaque error carrying that ID.
func InternalError(op string, err error) *Error {
	correlationID := uuid.NewString()
	logger.Error("unexpected failure", "op", op, "correlation_id", correlationID, "error", err)
	return &Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf("unexpected error (ref %s)", correlationID),
		Err:     err,
	}
}

// KindOf extracts the failure kind; unclassified errors are internal.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
