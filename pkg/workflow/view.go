package workflow

import "github.com/aretw0/intake/pkg/domain"

// View is a snapshot of a controller for the presentation shell.
// It never aliases the controller's internal maps.
type View struct {
	SessionID          string                 `json:"session_id"`
	State              domain.State           `json:"state"`
	RequesterEmail     string                 `json:"requester_email,omitempty"`
	EmailError         string                 `json:"email_error,omitempty"`
	ProjectClass       domain.Tier            `json:"project_class"`
	Classification     domain.Classification  `json:"classification,omitempty"`
	FormValues         map[string]string      `json:"form_values"`
	Issues             domain.Issues          `json:"issues,omitempty"`
	Message            string                 `json:"message,omitempty"`
	Busy               bool                   `json:"busy"`
	SubmittedSessionID string                 `json:"submitted_session_id,omitempty"`
}

// Interactive reports whether the view accepts user actions.
func (v View) Interactive() bool {
	return v.State != domain.StateLoading && !v.Busy
}
