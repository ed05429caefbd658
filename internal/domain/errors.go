package domain

import (
	"errors"
	"fmt"
)

// FieldError is a single failed field rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the first failed rule and, when available, every
// failed rule in evaluation order.
type ValidationError struct {
	Field  string
	Msg    string
	Fields []FieldError
	Err    error
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// StateGateError is returned when an action is attempted outside the lifecycle
// state that permits it.
type StateGateError struct {
	Action string
	Reason string
}

func (e StateGateError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is not allowed", e.Action)
	}
	return e.Reason
}

// SubmissionError is returned when the persistence boundary rejects a change or
// cannot be reached.
type SubmissionError struct {
	Message string
	Err     error
}

func (e SubmissionError) Error() string { return e.Message }

func (e SubmissionError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsStateGate(err error) bool {
	var target StateGateError
	return errors.As(err, &target)
}

func IsSubmission(err error) bool {
	var target SubmissionError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

// ForbiddenError is returned when the caller's role does not allow an action.
type ForbiddenError struct {
	Action string
}

func (e ForbiddenError) Error() string {
	if e.Action == "" {
		return "forbidden"
	}
	return fmt.Sprintf("not allowed to %s", e.Action)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}
