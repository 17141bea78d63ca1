package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryAuth       ErrorCategory = "AUTH"
	CategoryNotFound   ErrorCategory = "NOT_FOUND"
	CategoryConflict   ErrorCategory = "CONFLICT"
	CategoryForbidden  ErrorCategory = "FORBIDDEN"
	CategoryInternal   ErrorCategory = "INTERNAL"
	CategoryExternal   ErrorCategory = "EXTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrEmailAlreadyInUse = NewDomainError(
		"EMAIL_ALREADY_IN_USE",
		CategoryConflict,
		http.StatusBadRequest,
		"email already in use",
	)

	ErrCannotModifySelf = NewDomainError(
		"CANNOT_MODIFY_SELF",
		CategoryForbidden,
		http.StatusForbidden,
		"cannot change your own status",
	)

	ErrSubscriptionNotFound = NewDomainError(
		"SUBSCRIPTION_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"subscription not found",
	)

	ErrInvalidSubscriptionStatus = NewDomainError(
		"INVALID_SUBSCRIPTION_STATUS",
		CategoryValidation,
		http.StatusBadRequest,
		"invalid subscription status",
	)

	ErrFeedbackNotFound = NewDomainError(
		"FEEDBACK_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"feedback not found",
	)

	ErrNoRecipients = NewDomainError(
		"NO_RECIPIENTS",
		CategoryNotFound,
		http.StatusNotFound,
		"no users match the requested group",
	)
)
