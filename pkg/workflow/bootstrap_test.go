package workflow

import (
	"testing"

	"github.com/aretw0/intake/internal/dto"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(mutate func(r *domain.SessionRecord)) *domain.SessionRecord {
	rec := domain.NewSessionRecord("abc123")
	mutate(rec)
	return rec
}

func TestPlan_Guards(t *testing.T) {
	tests := []struct {
		name  string
		rec   *domain.SessionRecord
		event Event
		guard string
	}{
		{"nil record", nil, EventBootFresh, "fresh"},
		{"empty record", record(func(*domain.SessionRecord) {}), EventBootFresh, "fresh"},
		{
			"submitted wins over content",
			record(func(r *domain.SessionRecord) {
				r.Status = domain.StatusSubmittedRequest
				r.Answers["stichpunkte"] = "x"
				r.RequesterEmail = "a@b.de"
			}),
			EventBootSubmitted, "already_submitted",
		},
		{
			"answers without email resume the form",
			record(func(r *domain.SessionRecord) { r.Answers["stichpunkte"] = "x" }),
			EventBootResume, "resume_form",
		},
		{
			"classification alone resumes the form",
			record(func(r *domain.SessionRecord) {
				r.Classification = domain.Classification{"projectClass": "standard"}
			}),
			EventBootResume, "resume_form",
		},
		{
			"real email goes to classification",
			record(func(r *domain.SessionRecord) { r.RequesterEmail = "a@b.de" }),
			EventBootEmail, "has_email",
		},
		{
			"sentinel email is absent",
			record(func(r *domain.SessionRecord) { r.RequesterEmail = domain.SentinelAnonymous }),
			EventBootFresh, "fresh",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Plan(tt.rec)
			assert.Equal(t, tt.event, h.Event)
			assert.Equal(t, tt.guard, h.Guard)
		})
	}
}

// Entries that never reach the form values still mean the requester saved
// something, so the session resumes into the form.
func TestPlan_ResumesOnUnusableAnswers(t *testing.T) {
	for _, body := range []string{
		`{"status":"in_progress","answers":"{\"anzahl\":3}"}`,
		`{"status":"in_progress","answers":"{\"stichpunkte\":\"\"}"}`,
	} {
		t.Run(body, func(t *testing.T) {
			rec, err := dto.DecodeSessionBody([]byte(body))
			require.NoError(t, err)
			require.Empty(t, rec.Answers)

			h := Plan(rec)
			assert.Equal(t, EventBootResume, h.Event)
			assert.Equal(t, "resume_form", h.Guard)
			assert.Empty(t, h.Values)
		})
	}
}

func TestPlan_HydratesUIKeys(t *testing.T) {
	rec := record(func(r *domain.SessionRecord) {
		r.Status = domain.StatusInProgress
		r.RequesterEmail = "a@b.de"
		r.Answers["stichpunkte"] = "x"
		r.Answers["beschreibung_vorhaben"] = ""
	})

	h := Plan(rec)

	assert.Equal(t, EventBootResume, h.Event)
	assert.Equal(t, map[string]string{"beschreibung": "x"}, h.Values)
	assert.Equal(t, "a@b.de", h.Email)
	assert.Equal(t, domain.DefaultTier, h.Tier)
	assert.Nil(t, h.Classification)
}

func TestPlan_Tier(t *testing.T) {
	t.Run("From Classification", func(t *testing.T) {
		h := Plan(record(func(r *domain.SessionRecord) {
			r.Classification = domain.Classification{"projectClass": "strategic"}
			r.Answers[domain.KeyProjectClass] = "standard"
		}))
		assert.Equal(t, domain.TierStrategic, h.Tier)
	})

	t.Run("From Answers When Classification Lacks It", func(t *testing.T) {
		h := Plan(record(func(r *domain.SessionRecord) {
			r.Classification = domain.Classification{"q1": "yes"}
			r.Answers[domain.KeyProjectClass] = "standard"
		}))
		assert.Equal(t, domain.TierStandard, h.Tier)
	})

	t.Run("Answers Ignored Without Classification", func(t *testing.T) {
		h := Plan(record(func(r *domain.SessionRecord) {
			r.Answers[domain.KeyProjectClass] = "standard"
		}))
		assert.Equal(t, domain.DefaultTier, h.Tier)
	})

	t.Run("Unknown Tier Falls Back", func(t *testing.T) {
		h := Plan(record(func(r *domain.SessionRecord) {
			r.Classification = domain.Classification{"projectClass": "gigantic"}
		}))
		assert.Equal(t, domain.DefaultTier, h.Tier)
	})
}

func TestPlan_SubmittedSkipsHydration(t *testing.T) {
	h := Plan(record(func(r *domain.SessionRecord) {
		r.Status = domain.StatusSubmittedRequest
		r.RequesterEmail = "a@b.de"
		r.Answers["stichpunkte"] = "x"
	}))

	assert.Empty(t, h.Values)
	assert.Empty(t, h.Email)
}

func TestNewSessionID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		assert.Regexp(t, `^[0-9a-f]{12}$`, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
