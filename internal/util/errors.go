package util

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError carries a kind and a caller-safe message. Err, when set, is the
// underlying cause and is only logged.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors of the same kind and message so sentinels work with errors.Is
// even after being wrapped with a cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Kind: e.Kind, Message: e.Message, Err: err}
}

func NewValidationError(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewForbiddenError(format string, args ...any) *AppError {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorizedError(format string, args ...any) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidCredentials    = NewUnauthorizedError("invalid credentials")
	ErrUserNotFound          = NewNotFoundError("user not found")
	ErrUserAlreadyExists     = NewConflictError("national id, username or email already registered")
	ErrStudentCannotEdit     = NewForbiddenError("students cannot edit account details")
	ErrPermissionDenied      = NewForbiddenError("permission denied")
	ErrSubjectNotFound       = NewNotFoundError("subject not found")
	ErrSubjectExists         = NewConflictError("subject name already exists")
	ErrSubjectHasExams       = NewConflictError("subject still has exam templates; delete them first")
	ErrSectionNotFound       = NewNotFoundError("section not found")
	ErrSectionExists         = NewConflictError("section name already exists")
	ErrStudentNotFound       = NewNotFoundError("student not found")
	ErrStudentProfileMissing = NewNotFoundError("student profile not found for this account")
	ErrExamNotFound          = NewNotFoundError("exam template not found")
	ErrExamInactive          = NewForbiddenError("exam is not currently available")
	ErrQuestionNotFound      = NewNotFoundError("question not found in this exam")
	ErrReattemptNotAllowed   = NewForbiddenError("reattempt not permitted for this exam")
	ErrNotImplemented        = &AppError{Kind: KindInternal, Message: "not implemented"}
)

// KindOf reports the kind of err, KindInternal when it is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
