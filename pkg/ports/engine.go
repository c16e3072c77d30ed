package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// BlockingEngine groups the engine calls the workflow waits on.
// Errors returned here are surfaced to the caller and stop the transition.
type BlockingEngine interface {
	// GetSession retrieves the persisted session.
	// Returns domain.ErrSessionNotFound if the engine has no record for id.
	GetSession(ctx context.Context, id string) (*domain.SessionRecord, error)

	// Submit sends the final change request. A nil error means the transport
	// succeeded; the result's Status still has to be checked.
	Submit(ctx context.Context, sub domain.Submission) (domain.SubmitResult, error)
}

// AdvisoryEngine groups best-effort engine calls.
// Callers log and discard their errors; they must never block a transition.
type AdvisoryEngine interface {
	// UpdateField persists partial progress (classification or a single field).
	UpdateField(ctx context.Context, upd domain.FieldUpdate) error

	// SendNotification asks the engine to send the welcome email.
	SendNotification(ctx context.Context, n domain.Notification) error
}

// WorkflowEngine is the full contract of the remote workflow engine.
type WorkflowEngine interface {
	BlockingEngine
	AdvisoryEngine
}
