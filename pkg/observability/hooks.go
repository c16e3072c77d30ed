package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/intake/pkg/domain"
)

// LogHooks logs transitions at debug level and failed engine calls at warn level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
				"event", e.Event,
			)
		},
		OnEngineCall: func(ctx context.Context, e *domain.EngineCallEvent) {
			if e.Err == nil {
				logger.DebugContext(ctx, "engine_call",
					"session_id", e.SessionID,
					"operation", e.Operation,
					"duration", e.Duration,
				)
				return
			}
			logger.WarnContext(ctx, "engine_call",
				"session_id", e.SessionID,
				"operation", e.Operation,
				"category", e.Category,
				"duration", e.Duration,
				"err", e.Err,
			)
		},
	}
}

// Chain merges hooks so every callback runs in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.ChainHooks(hooks...)
}
