// Package webhook serves the engine's webhook contract on top of a ports.WorkflowEngine,
// so the HTTP client can talk to the local engine exactly as it talks to the remote one.
package webhook

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/intake/internal/dto"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Webhook paths, matching the defaults of the engine client.
const (
	GetSessionPath = "/webhook/get-session"
	ChangeChatPath = "/webhook/change-chat"
)

// Server handles the webhook endpoints.
type Server struct {
	Engine ports.WorkflowEngine

	encodeNested bool
	logger       *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithEncodedNested makes get-session reply with answers and classification as
// JSON-encoded strings, the way the remote engine stores them.
func WithEncodedNested(enabled bool) Option {
	return func(s *Server) {
		s.encodeNested = enabled
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the webhook router for engine.
func NewHandler(engine ports.WorkflowEngine, opts ...Option) http.Handler {
	r := chi.NewRouter()
	Register(r, engine, opts...)
	return r
}

// Register adds the webhook routes to an existing router.
func Register(r chi.Router, engine ports.WorkflowEngine, opts ...Option) {
	s := &Server{Engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	r.Get(GetSessionPath, s.GetSession)
	r.Post(ChangeChatPath, s.ChangeChat)
}

// GetSession handles GET /webhook/get-session?session_id=ID.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	rec, err := s.Engine.GetSession(r.Context(), id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("get-session failed", "session_id", id, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, dto.NewSessionResponse(rec, s.encodeNested))
}

// ChangeChat handles POST /webhook/change-chat, routing on the body's source.
func (s *Server) ChangeChat(w http.ResponseWriter, r *http.Request) {
	var body dto.ChangeChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch body.Source {
	case domain.SourceFormAutosave:
		if err := s.Engine.UpdateField(ctx, body.ToFieldUpdate()); err != nil {
			s.fail(w, body, err)
			return
		}
		s.writeJSON(w, dto.AckResponse{OK: true})

	case domain.SourceWelcomeEmail:
		if err := s.Engine.SendNotification(ctx, body.Notification()); err != nil {
			s.fail(w, body, err)
			return
		}
		s.writeJSON(w, dto.AckResponse{OK: true})

	case domain.SourceFormSubmit:
		res, err := s.Engine.Submit(ctx, body.Submission())
		if err != nil {
			s.fail(w, body, err)
			return
		}
		// Rejections travel in the body with a 200, like the remote engine does.
		s.writeJSON(w, dto.SubmitResponse{Status: string(res.Status), ReplyText: res.ReplyText})

	default:
		http.Error(w, "unknown source: "+body.Source, http.StatusBadRequest)
	}
}

func (s *Server) fail(w http.ResponseWriter, body dto.ChangeChatRequest, err error) {
	s.logger.Error("change-chat failed", "session_id", body.SessionID, "source", body.Source, "err", err)
	code := http.StatusInternalServerError
	if errors.Is(err, domain.ErrInvalidEmail) {
		code = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}
