package domain

// State is a step of the intake workflow.
type State string

const (
	StateLoading                 State = "loading"                   // Bootstrap pending, no interaction allowed
	StateEmailInput              State = "email_input"               // Waiting for the requester email
	StateClassification          State = "classification"            // Questionnaire determines the tier
	StateForm                    State = "form"                      // Tier-specific form
	StateReview                  State = "review"                    // Warnings must be confirmed
	StateSubmittedRequest        State = "submitted_request"         // Submitted in this session
	StateAlreadySubmittedRequest State = "already_submitted_request" // Submitted before this session was opened
)

// Terminal reports whether no further mutation is permitted in the state.
func (s State) Terminal() bool {
	return s == StateSubmittedRequest || s == StateAlreadySubmittedRequest
}

// SessionStatus is the engine-side status of a session.
type SessionStatus string

const (
	StatusUnset            SessionStatus = ""
	StatusInProgress       SessionStatus = "in_progress"
	StatusSubmittedRequest SessionStatus = "submitted_request"
)

// Tier is the project class that selects which form fields are required.
type Tier string

const (
	TierMini      Tier = "mini"
	TierStandard  Tier = "standard"
	TierStrategic Tier = "strategic"
)

// DefaultTier is used until a classification determines otherwise.
const DefaultTier = TierMini

// ParseTier returns the tier for s, or false if s is not one of the known tiers.
func ParseTier(s string) (Tier, bool) {
	switch t := Tier(s); t {
	case TierMini, TierStandard, TierStrategic:
		return t, true
	}
	return "", false
}
