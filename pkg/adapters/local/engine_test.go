package local_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/adapters/local"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newEngine() *local.Engine {
	return local.New(memory.NewStore(), local.WithClock(func() time.Time { return epoch }))
}

func TestEngine_GetSessionNotFound(t *testing.T) {
	_, err := newEngine().GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_UpdateField(t *testing.T) {
	eng := newEngine()
	ctx := context.Background()

	require.NoError(t, eng.UpdateField(ctx, domain.FieldUpdate{
		SessionID:      "s1",
		Classification: domain.Classification{"projectClass": "standard"},
		ProjectClass:   domain.TierStandard,
		Fields:         map[string]string{domain.KeyProjectClass: "standard"},
	}))
	require.NoError(t, eng.UpdateField(ctx, domain.FieldUpdate{
		SessionID: "s1",
		Fields:    map[string]string{"stichpunkte": "x"},
	}))

	rec, err := eng.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, rec.Status)
	assert.Equal(t, "standard", rec.Classification.ProjectClass())
	assert.Equal(t, map[string]string{domain.KeyProjectClass: "standard", "stichpunkte": "x"}, rec.Answers)
	assert.Equal(t, epoch, rec.UpdatedAt)
}

func TestEngine_SendNotification(t *testing.T) {
	eng := newEngine()
	ctx := context.Background()

	n := domain.Notification{SessionID: "s1", Email: "a@b.de", Source: domain.SourceWelcomeEmail}
	require.NoError(t, eng.SendNotification(ctx, n))

	rec, err := eng.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.de", rec.RequesterEmail)
	assert.Equal(t, []domain.Notification{n}, eng.Outbox())

	err = eng.SendNotification(ctx, domain.Notification{SessionID: "s1", Email: domain.SentinelNoReply})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	assert.Len(t, eng.Outbox(), 1)
}

func TestEngine_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores Backend Keys", func(t *testing.T) {
		eng := newEngine()
		res, err := eng.Submit(ctx, domain.Submission{
			SessionID:    "s1",
			Email:        "a@b.de",
			ProjectClass: domain.TierMini,
			FormValues:   map[string]string{"beschreibung": "x", "titel": "CRM"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SubmitOK, res.Status)

		rec, err := eng.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmittedRequest, rec.Status)
		assert.Equal(t, "x", rec.Answers["stichpunkte"])
		assert.Equal(t, "CRM", rec.Answers["beschreibung_vorhaben"])
		assert.Equal(t, "mini", rec.Answers[domain.KeyProjectClass])
		assert.Equal(t, "a@b.de", rec.RequesterEmail)
	})

	t.Run("Idempotent", func(t *testing.T) {
		eng := newEngine()
		sub := domain.Submission{SessionID: "s1", FormValues: map[string]string{"titel": "first"}}
		_, err := eng.Submit(ctx, sub)
		require.NoError(t, err)

		sub.FormValues = map[string]string{"titel": "second"}
		res, err := eng.Submit(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, domain.SubmitOK, res.Status)
		assert.Equal(t, local.ReplyAlreadySubmitted, res.ReplyText)

		rec, _ := eng.GetSession(ctx, "s1")
		assert.Equal(t, "first", rec.Answers["beschreibung_vorhaben"])
	})

	t.Run("Missing Values", func(t *testing.T) {
		eng := newEngine()
		res, err := eng.Submit(ctx, domain.Submission{SessionID: "s1"})
		require.NoError(t, err)
		assert.Equal(t, domain.SubmitError, res.Status)
		assert.ErrorContains(t, res.Err(), local.ReplyMissingValues)
	})
}

func TestEngine_UpdateAfterSubmitIgnored(t *testing.T) {
	eng := newEngine()
	ctx := context.Background()
	_, err := eng.Submit(ctx, domain.Submission{SessionID: "s1", FormValues: map[string]string{"titel": "x"}})
	require.NoError(t, err)

	require.NoError(t, eng.UpdateField(ctx, domain.FieldUpdate{SessionID: "s1", Fields: map[string]string{"titel": "y"}}))

	rec, _ := eng.GetSession(ctx, "s1")
	assert.Equal(t, domain.StatusSubmittedRequest, rec.Status)
	assert.NotContains(t, rec.Answers, "titel")
}
