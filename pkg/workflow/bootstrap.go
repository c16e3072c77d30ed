package workflow

import (
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/fieldmap"
)

// guard is one rule of the bootstrap priority chain.
type guard struct {
	name  string
	when  func(rec *domain.SessionRecord) bool
	event Event
}

// bootstrapGuards are evaluated top-down; the first match decides the entry state.
// Reordering them changes which sessions resume where.
var bootstrapGuards = []guard{
	{
		// A submitted request is final. Nothing else in the record is looked at.
		name:  "already_submitted",
		when:  func(rec *domain.SessionRecord) bool { return rec.Status == domain.StatusSubmittedRequest },
		event: EventBootSubmitted,
	},
	{
		// Saved content resumes the form even when no email was captured.
		name:  "resume_form",
		when:  func(rec *domain.SessionRecord) bool { return rec.HasAnswers() || !rec.Classification.IsEmpty() },
		event: EventBootResume,
	},
	{
		// A real email means the welcome step is done.
		name:  "has_email",
		when:  func(rec *domain.SessionRecord) bool { return domain.RealEmail(rec.RequesterEmail) != "" },
		event: EventBootEmail,
	},
	{
		name:  "fresh",
		when:  func(*domain.SessionRecord) bool { return true },
		event: EventBootFresh,
	},
}

// Hydration is what a persisted record restores into a controller.
type Hydration struct {
	Event          Event
	Guard          string
	Email          string
	Values         map[string]string // UI keys
	Classification domain.Classification
	Tier           domain.Tier
}

// Plan computes the hydration for rec. A nil record plans a fresh session.
func Plan(rec *domain.SessionRecord) Hydration {
	h := Hydration{Tier: domain.DefaultTier, Values: map[string]string{}}
	if rec == nil {
		h.Event, h.Guard = EventBootFresh, "fresh"
		return h
	}

	for _, g := range bootstrapGuards {
		if g.when(rec) {
			h.Event, h.Guard = g.event, g.name
			break
		}
	}
	if h.Event == EventBootSubmitted {
		return h
	}

	h.Email = domain.RealEmail(rec.RequesterEmail)

	for k, v := range fieldmap.ToUI(rec.Answers) {
		if v != "" {
			h.Values[k] = v
		}
	}

	if !rec.Classification.IsEmpty() {
		h.Classification = rec.Classification.Clone()
		stored := rec.Classification.ProjectClass()
		if stored == "" {
			stored = rec.Answers[domain.KeyProjectClass]
		}
		if tier, ok := domain.ParseTier(stored); ok {
			h.Tier = tier
		}
	}
	return h
}
