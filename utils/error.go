package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrorRecordNotFound = errors.New("record not found")

// NotFoundError signals that an addressed row is missing.
// Resolver adapters translate it to a 404-equivalent response.
type NotFoundError struct {
	Entity string
	Id     string
}

func (e *NotFoundError) Error() string {
	if e.Id == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.Id)
}

func NewNotFoundError(entity string, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, Id: id}
}

// ConflictError signals a failed uniqueness check, e.g. a duplicated
// invoice number under the same parent.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewNameAlreadyExistsError(entity string, name string) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf("%s with name %q already exists", entity, name)}
}

// ValidationError is a processor rejection. The message names the
// offending entity or line and is safe to present to users.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// DeletionError signals referential protection preventing a delete.
type DeletionError struct {
	Message string
}

func (e *DeletionError) Error() string { return e.Message }

// RemoteApiError wraps a downstream non-2xx response (email providers,
// remote CRM). StatusCode is zero when the failure happened before a
// response was received.
type RemoteApiError struct {
	Message    string
	StatusCode int
}

func (e *RemoteApiError) Error() string { return e.Message }

// NewRemoteApiError extracts the remote `message` JSON field when present,
// otherwise falls back to a generic string. A non-empty context prefixes
// the message as "<context>: <message>".
func NewRemoteApiError(statusCode int, body []byte, context string) *RemoteApiError {
	message := fmt.Sprintf("Remote API error: %d", statusCode)
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	}
	if context != "" {
		message = context + ": " + message
	}
	return &RemoteApiError{Message: message, StatusCode: statusCode}
}

// OutsideRepsRequiredError is raised when a line has neither explicit
// outside splits nor any applicable defaults.
type OutsideRepsRequiredError struct {
	Entity string
}

func (e *OutsideRepsRequiredError) Error() string {
	return fmt.Sprintf("outside reps are required for %s", e.Entity)
}

// QuoteDuplicationError carries the descriptions of referenced rows that no
// longer exist so the caller can present a structured "cannot duplicate"
// response.
type QuoteDuplicationError struct {
	Missing []string
}

func (e *QuoteDuplicationError) Error() string {
	return "quote cannot be duplicated; missing: " + strings.Join(e.Missing, ", ")
}

type InvalidOutsideRepError struct {
	UserId string
}

func (e *InvalidOutsideRepError) Error() string {
	return fmt.Sprintf("user %s is not a valid outside rep", e.UserId)
}

type DuplicateUserInSplitRatesError struct {
	UserId string
}

func (e *DuplicateUserInSplitRatesError) Error() string {
	return fmt.Sprintf("user %s appears more than once in split rates", e.UserId)
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
