package domain

import (
	"strings"
	"time"
)

// Classification holds the questionnaire answers and the determined project class.
// Its shape is owned by the classification component; the core only reads the tier.
type Classification map[string]any

// IsEmpty reports whether the classification carries no entries.
func (c Classification) IsEmpty() bool {
	return len(c) == 0
}

// ProjectClass returns the raw projectClass entry, or "" if absent or not a string.
func (c Classification) ProjectClass() string {
	s, _ := c[KeyProjectClassInClassification].(string)
	return s
}

// Clone returns a shallow copy.
func (c Classification) Clone() Classification {
	if c == nil {
		return nil
	}
	out := make(Classification, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// SessionRecord is the engine's persisted view of one change request.
type SessionRecord struct {
	SessionID      string            `json:"session_id"`
	Status         SessionStatus     `json:"status"`
	RequesterEmail string            `json:"requester_email,omitempty"`
	Answers        map[string]string `json:"answers,omitempty"`
	Classification Classification    `json:"classification,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at,omitempty"`

	// AnswerEntries counts the answers as the engine reported them, including
	// entries dropped from Answers because they were empty or not strings.
	AnswerEntries int `json:"-"`
}

// HasAnswers reports whether the engine stored any answer entry at all.
func (r *SessionRecord) HasAnswers() bool {
	return len(r.Answers) > 0 || r.AnswerEntries > 0
}

// NewSessionRecord creates an empty record for id.
func NewSessionRecord(id string) *SessionRecord {
	return &SessionRecord{
		SessionID: id,
		Status:    StatusUnset,
		Answers:   make(map[string]string),
	}
}

// Clone returns a copy that shares no maps with r.
func (r *SessionRecord) Clone() *SessionRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Answers = CloneAnswers(r.Answers)
	out.Classification = r.Classification.Clone()
	return &out
}

// CloneAnswers copies a string mapping, returning an empty non-nil map for nil input.
func CloneAnswers(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IsSentinelEmail reports whether email is one of the placeholder addresses.
func IsSentinelEmail(email string) bool {
	switch strings.ToLower(strings.TrimSpace(email)) {
	case SentinelNoReply, SentinelAnonymous:
		return true
	}
	return false
}

// RealEmail returns email unless it is empty or a sentinel, in which case it returns "".
func RealEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" || IsSentinelEmail(email) {
		return ""
	}
	return email
}
