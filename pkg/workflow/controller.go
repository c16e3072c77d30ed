package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/fieldmap"
	"github.com/aretw0/intake/pkg/ports"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User-facing messages.
const (
	msgEmailMissing  = "Please enter your email address."
	msgEmailInvalid  = "Please enter a valid email address."
	msgBlockingIssue = "%d blocking error(s) must be fixed before submitting."
	msgUnreachable   = "The request could not be submitted: %v. Please try again or contact the change team."
)

// BootResult reports the outcome of Bootstrap.
type BootResult struct {
	State domain.State
	// Redirect is set when the controller had no session ID; the shell must
	// reload the entry point with this ID attached.
	Redirect string
	// Resumed is true when a persisted session was loaded.
	Resumed bool
}

// Controller drives the workflow of one session.
// It is safe for concurrent use; the session ID never changes after construction.
type Controller struct {
	engine ports.WorkflowEngine
	ids    ports.IDGenerator
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time

	sessionID string

	mu             sync.Mutex
	state          domain.State
	booted         bool
	busy           bool
	email          string
	emailError     string
	tier           domain.Tier
	classification domain.Classification
	values         map[string]string
	issues         domain.Issues
	message        string
	submittedID    string
}

// Option configures the Controller.
type Option func(*Controller)

// WithIDGenerator replaces the session ID generator.
func WithIDGenerator(ids ports.IDGenerator) Option {
	return func(c *Controller) {
		c.ids = ids
	}
}

// WithLifecycleHooks registers observability hooks.
// Hooks run while the controller is locked and must not call back into it.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a controller for sessionID. An empty ID makes Bootstrap
// return a redirect to a fresh one.
func NewController(engine ports.WorkflowEngine, sessionID string, opts ...Option) *Controller {
	c := &Controller{
		engine:    engine,
		ids:       RandomIDs,
		logger:    logging.NewNop(),
		now:       time.Now,
		sessionID: sessionID,
		state:     domain.StateLoading,
		tier:      domain.DefaultTier,
		values:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("session_id", sessionID)
	return c
}

// SessionID returns the immutable session identifier.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// State returns the current workflow state.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a network call started by an action is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// View returns a snapshot for rendering.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	submitted := c.submittedID
	if submitted == "" && c.state.Terminal() {
		submitted = c.sessionID
	}
	return View{
		SessionID:          c.sessionID,
		State:              c.state,
		RequesterEmail:     c.email,
		EmailError:         c.emailError,
		ProjectClass:       c.tier,
		Classification:     c.classification.Clone(),
		FormValues:         domain.CloneAnswers(c.values),
		Issues:             c.issues.Clone(),
		Message:            c.message,
		Busy:               c.busy,
		SubmittedSessionID: submitted,
	}
}

// Bootstrap loads the persisted session and decides the entry state. It runs once;
// later calls return domain.ErrInvalidTransition. Engine failures never fail the
// bootstrap: the session starts fresh at the email step instead.
func (c *Controller) Bootstrap(ctx context.Context) (BootResult, error) {
	c.mu.Lock()
	if c.booted {
		state := c.state
		c.mu.Unlock()
		return BootResult{State: state}, fmt.Errorf("%w: already bootstrapped", domain.ErrInvalidTransition)
	}
	c.booted = true

	if c.sessionID == "" {
		c.mu.Unlock()
		id := c.ids.NewID()
		c.logger.Info("No session in entry point, redirecting", "new_session_id", id)
		return BootResult{State: domain.StateLoading, Redirect: id}, nil
	}

	c.busy = true
	c.mu.Unlock()

	var rec *domain.SessionRecord
	err := c.observe(ctx, "get_session", domain.CallBlocking, func(ctx context.Context) error {
		var err error
		rec, err = c.engine.GetSession(ctx, c.sessionID)
		return err
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.logger.Info("Session not found, starting fresh")
		} else {
			c.logger.Warn("Could not load session, starting fresh", "err", err)
		}
		c.apply(ctx, EventBootFresh)
		return BootResult{State: c.state}, nil
	}

	h := Plan(rec)
	if h.Event == EventBootSubmitted {
		c.submittedID = c.sessionID
	} else {
		c.email = h.Email
		c.values = h.Values
		c.classification = h.Classification
		c.tier = h.Tier
	}
	c.apply(ctx, h.Event)
	c.logger.Info("Session resumed", "guard", h.Guard, "state", c.state, "fields", len(c.values))
	return BootResult{State: c.state, Resumed: rec != nil}, nil
}

// SubmitEmail validates the requester email, sends the welcome notification and
// moves on to the classification.
func (c *Controller) SubmitEmail(ctx context.Context, email string) error {
	c.mu.Lock()
	if err := c.allow(domain.StateEmailInput); err != nil {
		c.mu.Unlock()
		return err
	}

	email = strings.TrimSpace(email)
	switch {
	case email == "":
		c.emailError = msgEmailMissing
		c.mu.Unlock()
		return fmt.Errorf("%w: empty", domain.ErrInvalidEmail)
	case !emailPattern.MatchString(email):
		c.emailError = msgEmailInvalid
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", domain.ErrInvalidEmail, email)
	}

	c.emailError = ""
	c.email = email
	c.busy = true
	c.mu.Unlock()

	c.advise(ctx, "send_notification", func(ctx context.Context) error {
		return c.engine.SendNotification(ctx, domain.Notification{
			SessionID: c.sessionID,
			Email:     email,
			Source:    domain.SourceWelcomeEmail,
		})
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	return c.apply(ctx, EventEmailAccepted)
}

// CompleteClassification records the questionnaire result, persists it and opens the form.
func (c *Controller) CompleteClassification(ctx context.Context, cls domain.Classification, tier domain.Tier) error {
	parsed, ok := domain.ParseTier(string(tier))
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}

	c.mu.Lock()
	if err := c.allow(domain.StateClassification); err != nil {
		c.mu.Unlock()
		return err
	}
	c.classification = cls.Clone()
	c.tier = parsed
	c.busy = true
	c.mu.Unlock()

	c.advise(ctx, "update_field", func(ctx context.Context) error {
		return c.engine.UpdateField(ctx, domain.FieldUpdate{
			SessionID:      c.sessionID,
			Source:         domain.SourceFormAutosave,
			Classification: cls,
			ProjectClass:   parsed,
			Fields:         map[string]string{domain.KeyProjectClass: string(parsed)},
		})
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	return c.apply(ctx, EventClassified)
}

// Autosave stores one form field locally and persists it under its backend key.
// It honors an in-flight submission but does not mark the controller busy itself.
func (c *Controller) Autosave(ctx context.Context, field, value string) error {
	c.mu.Lock()
	if err := c.allow(domain.StateForm); err != nil {
		c.mu.Unlock()
		return err
	}
	c.values[field] = value
	c.mu.Unlock()

	c.advise(ctx, "autosave", func(ctx context.Context) error {
		return c.engine.UpdateField(ctx, domain.FieldUpdate{
			SessionID: c.sessionID,
			Source:    domain.SourceFormAutosave,
			Fields:    map[string]string{fieldmap.BackendKey(field): value},
		})
	})
	return nil
}

// SubmitForm handles the values and issues reported by the form. Errors block
// without any network call, warnings lead to the review step, a clean form is
// submitted right away.
func (c *Controller) SubmitForm(ctx context.Context, values map[string]string, issues domain.Issues) error {
	c.mu.Lock()
	if err := c.allow(domain.StateForm); err != nil {
		c.mu.Unlock()
		return err
	}

	c.values = domain.CloneAnswers(values)
	c.issues = issues.Clone()
	c.message = ""

	switch v := Assess(issues); v {
	case VerdictBlocked:
		n := issues.Count(domain.SeverityError)
		c.message = fmt.Sprintf(msgBlockingIssue, n)
		c.apply(ctx, EventFormBlocked)
		c.mu.Unlock()
		return fmt.Errorf("%w: %d error(s)", domain.ErrBlockingIssues, n)
	case VerdictReview:
		err := c.apply(ctx, EventFormNeedsReview)
		c.mu.Unlock()
		return err
	}
	return c.submitLocked(ctx)
}

// EditReview returns from the review step to the form, keeping the values.
func (c *Controller) EditReview() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.allow(domain.StateReview); err != nil {
		return err
	}
	c.message = ""
	return c.apply(context.Background(), EventEdit)
}

// ConfirmReview submits the values carried into the review step despite warnings.
func (c *Controller) ConfirmReview(ctx context.Context) error {
	c.mu.Lock()
	if err := c.allow(domain.StateReview); err != nil {
		c.mu.Unlock()
		return err
	}
	c.message = ""
	return c.submitLocked(ctx)
}

// StartNew returns the ID of a fresh session drawn from ids, or from the
// controller's own generator when ids is nil. The controller itself is left
// untouched; the shell bootstraps a new controller for the returned ID.
func (c *Controller) StartNew(ids ports.IDGenerator) (string, error) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if _, err := Next(state, EventStartNew); err != nil {
		return "", err
	}
	if ids == nil {
		ids = c.ids
	}
	return ids.NewID(), nil
}

// submitLocked sends the submission. It must be called with c.mu held and releases it.
func (c *Controller) submitLocked(ctx context.Context) error {
	sub := domain.Submission{
		SessionID:      c.sessionID,
		Email:          resolveEmail(c.email, c.values),
		ProjectClass:   c.tier,
		Classification: c.classification.Clone(),
		FormValues:     domain.CloneAnswers(c.values),
	}
	c.busy = true
	c.mu.Unlock()

	err := c.observe(ctx, "submit", domain.CallBlocking, func(ctx context.Context) error {
		res, err := c.engine.Submit(ctx, sub)
		if err != nil {
			return err
		}
		return res.Err()
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		c.message = failureMessage(err)
		c.logger.Warn("Submission failed", "state", c.state, "err", err)
		c.apply(ctx, EventSubmitFailed)
		return fmt.Errorf("submission failed: %w", err)
	}

	c.submittedID = sub.SessionID
	c.message = ""
	c.logger.Info("Request submitted", "project_class", sub.ProjectClass)
	return c.apply(ctx, EventSubmitSucceeded)
}

// allow checks that an action may run. Callers hold c.mu.
func (c *Controller) allow(expected domain.State) error {
	switch {
	case !c.booted || c.state == domain.StateLoading:
		return fmt.Errorf("%w: session is still loading", domain.ErrInvalidTransition)
	case c.state.Terminal():
		return domain.ErrTerminal
	case c.busy:
		return domain.ErrBusy
	case c.state != expected:
		return fmt.Errorf("%w: expected %s, in %s", domain.ErrInvalidTransition, expected, c.state)
	}
	return nil
}

// apply runs ev through the state machine. Callers hold c.mu.
func (c *Controller) apply(ctx context.Context, ev Event) error {
	next, err := Next(c.state, ev)
	if err != nil {
		return err
	}
	from := c.state
	c.state = next

	if from != next {
		c.logger.Debug("Transition", "from", from, "to", next, "event", ev)
	}
	if c.hooks.OnTransition != nil {
		c.hooks.OnTransition(ctx, &domain.TransitionEvent{
			Timestamp: c.now(),
			SessionID: c.sessionID,
			From:      from,
			To:        next,
			Event:     string(ev),
		})
	}
	return nil
}

// observe runs an engine call and reports it to the hooks.
func (c *Controller) observe(ctx context.Context, op string, cat domain.CallCategory, fn func(context.Context) error) error {
	start := c.now()
	err := fn(ctx)
	if c.hooks.OnEngineCall != nil {
		c.hooks.OnEngineCall(ctx, &domain.EngineCallEvent{
			Timestamp: start,
			SessionID: c.sessionID,
			Operation: op,
			Category:  cat,
			Duration:  c.now().Sub(start),
			Err:       err,
		})
	}
	return err
}

// advise runs an advisory engine call. It has no result on purpose: a failure is
// logged and the workflow continues.
func (c *Controller) advise(ctx context.Context, op string, fn func(context.Context) error) {
	if err := c.observe(ctx, op, domain.CallAdvisory, fn); err != nil {
		c.logger.Warn("Advisory engine call failed, continuing", "operation", op, "err", err)
	}
}

// resolveEmail picks the submission email: captured requester email, then the
// contact email of the form, then the placeholder.
func resolveEmail(requester string, values map[string]string) string {
	if e := strings.TrimSpace(requester); e != "" {
		return e
	}
	if e := strings.TrimSpace(values[domain.KeyContactEmail]); e != "" {
		return e
	}
	return domain.FallbackEmail
}

func failureMessage(err error) string {
	var subErr *domain.SubmissionError
	if errors.As(err, &subErr) {
		return subErr.Reason
	}
	return fmt.Sprintf(msgUnreachable, err)
}
