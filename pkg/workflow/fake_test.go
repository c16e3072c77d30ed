package workflow

import (
	"context"
	"sync"

	"github.com/aretw0/intake/pkg/domain"
)

// fakeEngine records every call and returns canned results.
type fakeEngine struct {
	mu sync.Mutex

	rec       *domain.SessionRecord
	getErr    error
	updateErr error
	notifyErr error
	submitRes domain.SubmitResult
	submitErr error

	// gate, when set, blocks Submit until it is closed.
	gate    chan struct{}
	entered chan struct{}

	gets          int
	updates       []domain.FieldUpdate
	notifications []domain.Notification
	submissions   []domain.Submission
}

func (f *fakeEngine) GetSession(_ context.Context, _ string) (*domain.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.rec == nil {
		return nil, domain.ErrSessionNotFound
	}
	return f.rec.Clone(), nil
}

func (f *fakeEngine) Submit(_ context.Context, sub domain.Submission) (domain.SubmitResult, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, sub)
	if f.submitErr != nil {
		return domain.SubmitResult{}, f.submitErr
	}
	if f.submitRes.Status == "" {
		return domain.SubmitResult{Status: domain.SubmitOK}, nil
	}
	return f.submitRes, nil
}

func (f *fakeEngine) UpdateField(_ context.Context, upd domain.FieldUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, upd)
	return f.updateErr
}

func (f *fakeEngine) SendNotification(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, n)
	return f.notifyErr
}

func (f *fakeEngine) calls() (gets, updates, notifications, submissions int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets, len(f.updates), len(f.notifications), len(f.submissions)
}
