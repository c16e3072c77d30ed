package domain

import (
	"context"
	"time"
)

// CallCategory separates advisory engine calls from blocking ones.
type CallCategory string

const (
	// CallAdvisory failures are logged and swallowed; the workflow continues.
	CallAdvisory CallCategory = "advisory"
	// CallBlocking failures are surfaced; the workflow does not advance.
	CallBlocking CallCategory = "blocking"
)

// TransitionEvent is emitted every time the controller changes state.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	From      State     `json:"from"`
	To        State     `json:"to"`
	Event     string    `json:"event"`
}

// EngineCallEvent is emitted after every call to the workflow engine.
type EngineCallEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	SessionID string        `json:"session_id"`
	Operation string        `json:"operation"`
	Category  CallCategory  `json:"category"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for controller observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnEngineCall func(context.Context, *EngineCallEvent)
}

// ChainHooks returns hooks that invoke every non-nil callback of hs in order.
func ChainHooks(hs ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			for _, h := range hs {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnEngineCall: func(ctx context.Context, e *EngineCallEvent) {
			for _, h := range hs {
				if h.OnEngineCall != nil {
					h.OnEngineCall(ctx, e)
				}
			}
		},
	}
}
