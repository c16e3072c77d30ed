package domain

// FieldUpdate is an advisory write of partial progress (classification save or field autosave).
type FieldUpdate struct {
	SessionID      string
	Source         string
	Classification Classification
	ProjectClass   Tier
	Fields         map[string]string // backend keys
}

// Notification requests the welcome email for a session.
type Notification struct {
	SessionID string
	Email     string
	Source    string
}

// Submission is the final change request sent to the engine.
type Submission struct {
	SessionID      string
	Email          string
	ProjectClass   Tier
	Classification Classification
	FormValues     map[string]string
}

// SubmitStatus is the discriminant of a submit reply.
type SubmitStatus string

const (
	SubmitOK    SubmitStatus = "ok"
	SubmitError SubmitStatus = "error"
)

// SubmitResult is the structured reply to a submission.
type SubmitResult struct {
	Status    SubmitStatus `json:"status"`
	ReplyText string       `json:"reply_text,omitempty"`
}

// Err converts an error-status result into a *SubmissionError, or returns nil.
func (r SubmitResult) Err() error {
	if r.Status != SubmitError {
		return nil
	}
	reason := r.ReplyText
	if reason == "" {
		reason = "unknown error"
	}
	return &SubmissionError{Reason: reason}
}
