package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// RecordStore defines the interface for persisting session records.
// It backs the local workflow engine used for development and tests.
type RecordStore interface {
	// Save persists the record under its SessionID.
	Save(ctx context.Context, rec *domain.SessionRecord) error

	// Load retrieves the record for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionRecord, error)

	// Delete removes the record for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
