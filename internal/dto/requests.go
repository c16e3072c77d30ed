package dto

import "github.com/aretw0/intake/pkg/domain"

// ChangeChatRequest is the body of every write to the change-chat endpoint.
// The engine routes on Source; unused fields are omitted.
type ChangeChatRequest struct {
	SessionID      string                `json:"session_id"`
	Source         string                `json:"source"`
	Email          string                `json:"email,omitempty"`
	Classification domain.Classification `json:"classification,omitempty"`
	ProjectClass   domain.Tier           `json:"projectClass,omitempty"`
	FieldUpdate    map[string]string     `json:"field_update,omitempty"`
	FormValues     map[string]string     `json:"formValues,omitempty"`
}

// SubmitRequest is the submission body. Classification is always present
// (null when unknown) to match what the engine expects.
type SubmitRequest struct {
	SessionID      string                `json:"session_id"`
	Source         string                `json:"source"`
	Email          string                `json:"email"`
	ProjectClass   domain.Tier           `json:"projectClass"`
	Classification domain.Classification `json:"classification"`
	FormValues     map[string]string     `json:"formValues"`
}

// SubmitResponse is the structured reply to a submission.
type SubmitResponse struct {
	Status    string `json:"status"`
	ReplyText string `json:"reply_text,omitempty"`
}

// AckResponse is the reply to advisory writes.
type AckResponse struct {
	OK bool `json:"ok"`
}

// FromFieldUpdate builds the wire body of an advisory field update.
func FromFieldUpdate(u domain.FieldUpdate) ChangeChatRequest {
	source := u.Source
	if source == "" {
		source = domain.SourceFormAutosave
	}
	return ChangeChatRequest{
		SessionID:      u.SessionID,
		Source:         source,
		Classification: u.Classification,
		ProjectClass:   u.ProjectClass,
		FieldUpdate:    u.Fields,
	}
}

// FromNotification builds the wire body of a welcome notification.
func FromNotification(n domain.Notification) ChangeChatRequest {
	source := n.Source
	if source == "" {
		source = domain.SourceWelcomeEmail
	}
	return ChangeChatRequest{
		SessionID: n.SessionID,
		Source:    source,
		Email:     n.Email,
	}
}

// FromSubmission builds the wire body of a submission.
func FromSubmission(s domain.Submission) SubmitRequest {
	values := s.FormValues
	if values == nil {
		values = map[string]string{}
	}
	return SubmitRequest{
		SessionID:      s.SessionID,
		Source:         domain.SourceFormSubmit,
		Email:          s.Email,
		ProjectClass:   s.ProjectClass,
		Classification: s.Classification,
		FormValues:     values,
	}
}

// ToFieldUpdate converts the request back into the domain value.
func (r ChangeChatRequest) ToFieldUpdate() domain.FieldUpdate {
	return domain.FieldUpdate{
		SessionID:      r.SessionID,
		Source:         r.Source,
		Classification: r.Classification,
		ProjectClass:   r.ProjectClass,
		Fields:         r.FieldUpdate,
	}
}

// Notification converts the request back into the domain value.
func (r ChangeChatRequest) Notification() domain.Notification {
	return domain.Notification{SessionID: r.SessionID, Email: r.Email, Source: r.Source}
}

// Submission converts the request back into the domain value.
func (r ChangeChatRequest) Submission() domain.Submission {
	return domain.Submission{
		SessionID:      r.SessionID,
		Email:          r.Email,
		ProjectClass:   r.ProjectClass,
		Classification: r.Classification,
		FormValues:     r.FormValues,
	}
}

// Result converts the reply into the domain value.
func (r SubmitResponse) Result() domain.SubmitResult {
	return domain.SubmitResult{Status: domain.SubmitStatus(r.Status), ReplyText: r.ReplyText}
}
