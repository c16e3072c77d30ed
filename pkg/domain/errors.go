package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found by the engine or store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidTransition is returned when an action is not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrTerminal is returned when an action targets a session that was already submitted.
var ErrTerminal = errors.New("session already submitted")

// ErrBusy is returned when an action arrives while another network call is in flight.
var ErrBusy = errors.New("operation in progress")

// ErrInvalidEmail is returned when the requester email is empty or malformed.
var ErrInvalidEmail = errors.New("invalid email")

// ErrBlockingIssues is returned when the form carries at least one error-severity issue.
var ErrBlockingIssues = errors.New("form has blocking issues")

// ErrSubmissionRejected is the sentinel wrapped by SubmissionError.
var ErrSubmissionRejected = errors.New("submission rejected")

// SubmissionError is a structured failure reported by the engine in an otherwise
// successful response.
type SubmissionError struct {
	Reason string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSubmissionRejected, e.Reason)
}

func (e *SubmissionError) Unwrap() error {
	return ErrSubmissionRejected
}

// ErrUnknownTier is returned when a classification reports a tier outside the known set.
var ErrUnknownTier = errors.New("unknown project class")
