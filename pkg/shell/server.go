package shell

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/session"
	"github.com/aretw0/intake/pkg/workflow"
	"github.com/go-chi/chi/v5"
)

// EntryPath is the entry point of the intake flow.
const EntryPath = "/chat"

// Response is the body of every shell reply.
type Response struct {
	View  *workflow.View `json:"view,omitempty"`
	Error string         `json:"error,omitempty"`
}

// EmailRequest is the body of POST /chat/{session}/email.
type EmailRequest struct {
	Email string `json:"email"`
}

// ClassificationRequest is the body of POST /chat/{session}/classification.
type ClassificationRequest struct {
	Classification domain.Classification `json:"classification"`
	ProjectClass   domain.Tier           `json:"projectClass"`
}

// AutosaveRequest is the body of POST /chat/{session}/autosave.
type AutosaveRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FormRequest is the body of POST /chat/{session}/form.
type FormRequest struct {
	Values map[string]string `json:"values"`
	Issues domain.Issues     `json:"issues"`
}

// Server handles the shell routes.
type Server struct {
	Sessions *session.Manager

	ids    ports.IDGenerator
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithIDGenerator replaces the generator used for entry and start-new redirects.
func WithIDGenerator(ids ports.IDGenerator) Option {
	return func(s *Server) {
		s.ids = ids
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the shell router.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		ids:      workflow.RandomIDs,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.Health)
	r.Get(EntryPath, s.Entry)
	r.Route(EntryPath+"/{session}", func(r chi.Router) {
		r.Post("/email", s.blocking(s.submitEmail))
		r.Post("/classification", s.blocking(s.classify))
		r.Post("/form", s.blocking(s.submitForm))
		r.Post("/review/confirm", s.blocking(s.confirmReview))
		r.Post("/review/edit", s.action(s.editReview))
		r.Post("/autosave", s.action(s.autosave))
		r.Post("/new", s.StartNew)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Entry handles GET /chat. Without a session it redirects to a fresh link.
func (s *Server) Entry(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	if id == "" {
		http.Redirect(w, r, SessionURL(s.ids.NewID()), http.StatusFound)
		return
	}

	ctrl, err := s.Sessions.Controller(r.Context(), id)
	if err != nil {
		s.fail(w, nil, err)
		return
	}
	view := ctrl.View()
	s.writeJSON(w, http.StatusOK, Response{View: &view})
}

// StartNew handles POST /chat/{session}/new.
func (s *Server) StartNew(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.Sessions.Controller(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		s.fail(w, nil, err)
		return
	}
	next, err := ctrl.StartNew(s.ids)
	if err != nil {
		s.fail(w, ctrl, err)
		return
	}
	// The old session is terminal; a later visit bootstraps it from the engine.
	s.Sessions.Forget(ctrl.SessionID())
	http.Redirect(w, r, SessionURL(next), http.StatusSeeOther)
}

// SessionURL returns the entry link for id.
func SessionURL(id string) string {
	return EntryPath + "?" + url.Values{"session": {id}}.Encode()
}

// actionFunc decodes its body from r and runs one controller action.
type actionFunc func(ctx context.Context, ctrl *workflow.Controller, r *http.Request) error

// errBadRequest marks undecodable request bodies.
var errBadRequest = errors.New("invalid request body")

// action resolves the controller and runs fn without the session lock.
func (s *Server) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl, err := s.Sessions.Controller(r.Context(), chi.URLParam(r, "session"))
		if err != nil {
			s.fail(w, nil, err)
			return
		}
		if err := fn(r.Context(), ctrl, r); err != nil {
			s.fail(w, ctrl, err)
			return
		}
		s.ok(w, ctrl)
	}
}

// blocking runs fn under the session lock. A busy controller is rejected before
// the lock is taken so a double click never queues a second network call.
func (s *Server) blocking(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session")
		ctrl, err := s.Sessions.Controller(r.Context(), id)
		if err != nil {
			s.fail(w, nil, err)
			return
		}
		if ctrl.Busy() {
			s.fail(w, ctrl, domain.ErrBusy)
			return
		}
		err = s.Sessions.WithLock(r.Context(), id, func(ctx context.Context) error {
			return fn(ctx, ctrl, r)
		})
		if err != nil {
			s.fail(w, ctrl, err)
			return
		}
		s.ok(w, ctrl)
	}
}

func (s *Server) submitEmail(ctx context.Context, ctrl *workflow.Controller, r *http.Request) error {
	var body EmailRequest
	if err := decode(r, &body); err != nil {
		return err
	}
	return ctrl.SubmitEmail(ctx, body.Email)
}

func (s *Server) classify(ctx context.Context, ctrl *workflow.Controller, r *http.Request) error {
	var body ClassificationRequest
	if err := decode(r, &body); err != nil {
		return err
	}
	tier := body.ProjectClass
	if tier == "" {
		tier = domain.Tier(body.Classification.ProjectClass())
	}
	return ctrl.CompleteClassification(ctx, body.Classification, tier)
}

func (s *Server) autosave(ctx context.Context, ctrl *workflow.Controller, r *http.Request) error {
	var body AutosaveRequest
	if err := decode(r, &body); err != nil {
		return err
	}
	if body.Field == "" {
		return errBadRequest
	}
	return ctrl.Autosave(ctx, body.Field, body.Value)
}

func (s *Server) submitForm(ctx context.Context, ctrl *workflow.Controller, r *http.Request) error {
	var body FormRequest
	if err := decode(r, &body); err != nil {
		return err
	}
	return ctrl.SubmitForm(ctx, body.Values, body.Issues)
}

func (s *Server) confirmReview(ctx context.Context, ctrl *workflow.Controller, _ *http.Request) error {
	return ctrl.ConfirmReview(ctx)
}

func (s *Server) editReview(_ context.Context, ctrl *workflow.Controller, _ *http.Request) error {
	return ctrl.EditReview()
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}

// StatusFor maps an action error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, session.ErrMissingSessionID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrBlockingIssues),
		errors.Is(err, domain.ErrUnknownTier):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrTerminal),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

func (s *Server) ok(w http.ResponseWriter, ctrl *workflow.Controller) {
	view := ctrl.View()
	s.writeJSON(w, http.StatusOK, Response{View: &view})
}

func (s *Server) fail(w http.ResponseWriter, ctrl *workflow.Controller, err error) {
	code := StatusFor(err)
	resp := Response{Error: err.Error()}
	if ctrl != nil {
		view := ctrl.View()
		resp.View = &view
		s.logger.Info("Action rejected", "session_id", ctrl.SessionID(), "state", view.State, "status", code, "err", err)
	} else {
		s.logger.Warn("Request failed", "status", code, "err", err)
	}
	s.writeJSON(w, code, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
