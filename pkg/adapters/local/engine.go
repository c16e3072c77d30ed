// Package local implements the workflow engine in-process on top of a RecordStore.
// It stands in for the remote engine during development and in tests; it does
// not send email, it only records what would have been sent.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/fieldmap"
	"github.com/aretw0/intake/pkg/ports"
)

// Reply texts of the submit operation.
const (
	ReplyMissingValues    = "form values missing"
	ReplyAlreadySubmitted = "request was already submitted"
)

// Engine implements ports.WorkflowEngine.
type Engine struct {
	store  ports.RecordStore
	logger *slog.Logger
	now    func() time.Time

	// mu serializes read-modify-write cycles on the store.
	mu     sync.Mutex
	outbox []domain.Notification
}

var _ ports.WorkflowEngine = (*Engine)(nil)

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock replaces the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine persisting to store.
func New(store ports.RecordStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the backing store.
func (e *Engine) Store() ports.RecordStore {
	return e.store
}

// GetSession returns the stored record or domain.ErrSessionNotFound.
func (e *Engine) GetSession(ctx context.Context, id string) (*domain.SessionRecord, error) {
	return e.store.Load(ctx, id)
}

// UpdateField merges partial progress into the record. Submitted records are left untouched.
func (e *Engine) UpdateField(ctx context.Context, upd domain.FieldUpdate) error {
	return e.mutate(ctx, upd.SessionID, func(rec *domain.SessionRecord) bool {
		if rec.Status == domain.StatusSubmittedRequest {
			e.logger.Warn("Ignoring update of submitted session", "session_id", rec.SessionID)
			return false
		}
		if !upd.Classification.IsEmpty() {
			rec.Classification = upd.Classification.Clone()
		}
		if upd.ProjectClass != "" {
			rec.Answers[domain.KeyProjectClass] = string(upd.ProjectClass)
		}
		for k, v := range upd.Fields {
			rec.Answers[k] = v
		}
		rec.Status = domain.StatusInProgress
		return true
	})
}

// SendNotification records the requester email and queues the welcome email in the outbox.
func (e *Engine) SendNotification(ctx context.Context, n domain.Notification) error {
	if domain.RealEmail(n.Email) == "" {
		return fmt.Errorf("%w: %q", domain.ErrInvalidEmail, n.Email)
	}
	return e.mutate(ctx, n.SessionID, func(rec *domain.SessionRecord) bool {
		rec.RequesterEmail = n.Email
		if rec.Status == domain.StatusUnset {
			rec.Status = domain.StatusInProgress
		}
		e.outbox = append(e.outbox, n)
		e.logger.Info("Welcome notification queued", "session_id", n.SessionID, "email", n.Email)
		return true
	})
}

// Submit stores the final request. Resubmitting a submitted session succeeds
// without rewriting it.
func (e *Engine) Submit(ctx context.Context, sub domain.Submission) (domain.SubmitResult, error) {
	if len(sub.FormValues) == 0 {
		return domain.SubmitResult{Status: domain.SubmitError, ReplyText: ReplyMissingValues}, nil
	}

	result := domain.SubmitResult{Status: domain.SubmitOK}
	err := e.mutate(ctx, sub.SessionID, func(rec *domain.SessionRecord) bool {
		if rec.Status == domain.StatusSubmittedRequest {
			result.ReplyText = ReplyAlreadySubmitted
			return false
		}
		for k, v := range fieldmap.ToBackend(sub.FormValues) {
			rec.Answers[k] = v
		}
		if sub.ProjectClass != "" {
			rec.Answers[domain.KeyProjectClass] = string(sub.ProjectClass)
		}
		if !sub.Classification.IsEmpty() {
			rec.Classification = sub.Classification.Clone()
		}
		if domain.RealEmail(rec.RequesterEmail) == "" {
			rec.RequesterEmail = sub.Email
		}
		rec.Status = domain.StatusSubmittedRequest
		result.ReplyText = fmt.Sprintf("request %s received", rec.SessionID)
		return true
	})
	if err != nil {
		return domain.SubmitResult{}, err
	}
	e.logger.Info("Request submitted", "session_id", sub.SessionID, "project_class", sub.ProjectClass)
	return result, nil
}

// Outbox returns a copy of the queued notifications.
func (e *Engine) Outbox() []domain.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Notification(nil), e.outbox...)
}

// mutate loads (or creates) the record for id, applies fn and saves it if fn reports a change.
func (e *Engine) mutate(ctx context.Context, id string, fn func(rec *domain.SessionRecord) bool) error {
	if id == "" {
		return errors.New("session id is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.store.Load(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		rec = domain.NewSessionRecord(id)
	} else if err != nil {
		return fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if rec.Answers == nil {
		rec.Answers = make(map[string]string)
	}

	if !fn(rec) {
		return nil
	}
	rec.UpdatedAt = e.now()
	if err := e.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return nil
}
