package workflow

import (
	"fmt"

	"github.com/aretw0/intake/pkg/domain"
)

// Event is an input to the state machine.
type Event string

const (
	EventBootFresh       Event = "boot_fresh"
	EventBootEmail       Event = "boot_email"
	EventBootResume      Event = "boot_resume"
	EventBootSubmitted   Event = "boot_submitted"
	EventEmailAccepted   Event = "email_accepted"
	EventClassified      Event = "classified"
	EventFormBlocked     Event = "form_blocked"
	EventFormNeedsReview Event = "form_needs_review"
	EventSubmitSucceeded Event = "submit_succeeded"
	EventSubmitFailed    Event = "submit_failed"
	EventEdit            Event = "edit"
	EventStartNew        Event = "start_new"
)

type transitionKey struct {
	from domain.State
	ev   Event
}

// transitions is the complete table; any pair not listed is rejected.
var transitions = map[transitionKey]domain.State{
	{domain.StateLoading, EventBootFresh}:     domain.StateEmailInput,
	{domain.StateLoading, EventBootEmail}:     domain.StateClassification,
	{domain.StateLoading, EventBootResume}:    domain.StateForm,
	{domain.StateLoading, EventBootSubmitted}: domain.StateAlreadySubmittedRequest,

	{domain.StateEmailInput, EventEmailAccepted}: domain.StateClassification,
	{domain.StateClassification, EventClassified}: domain.StateForm,

	{domain.StateForm, EventFormBlocked}:     domain.StateForm,
	{domain.StateForm, EventFormNeedsReview}: domain.StateReview,
	{domain.StateForm, EventSubmitSucceeded}: domain.StateSubmittedRequest,
	{domain.StateForm, EventSubmitFailed}:    domain.StateForm,

	{domain.StateReview, EventEdit}:            domain.StateForm,
	{domain.StateReview, EventSubmitSucceeded}: domain.StateSubmittedRequest,
	{domain.StateReview, EventSubmitFailed}:    domain.StateReview,

	{domain.StateSubmittedRequest, EventStartNew}:        domain.StateLoading,
	{domain.StateAlreadySubmittedRequest, EventStartNew}: domain.StateLoading,
}

// Next returns the state reached from `from` on ev.
func Next(from domain.State, ev Event) (domain.State, error) {
	to, ok := transitions[transitionKey{from, ev}]
	if !ok {
		return from, fmt.Errorf("%w: %s in state %s", domain.ErrInvalidTransition, ev, from)
	}
	return to, nil
}

// Verdict is the outcome of assessing the issues of a submitted form.
type Verdict int

const (
	VerdictSubmit  Verdict = iota // No errors, no warnings
	VerdictReview                 // Warnings need explicit confirmation
	VerdictBlocked                // Errors must be fixed first
)

func (v Verdict) String() string {
	switch v {
	case VerdictReview:
		return "review"
	case VerdictBlocked:
		return "blocked"
	}
	return "submit"
}

// Assess decides how a form submission proceeds. Info issues never matter.
func Assess(issues domain.Issues) Verdict {
	switch {
	case issues.Has(domain.SeverityError):
		return VerdictBlocked
	case issues.Has(domain.SeverityWarning):
		return VerdictReview
	}
	return VerdictSubmit
}
