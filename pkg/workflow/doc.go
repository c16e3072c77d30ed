/*
Package workflow implements the session-driven controller of the change request intake.

The controller owns the workflow state of exactly one session. It is split in two layers:

  - A pure state machine (Next, Assess, Plan) that decides transitions from the current
    state, an event, the validation issues or a persisted session record. It performs
    no I/O and is unit-testable on its own.
  - A side-effect boundary (Controller) that calls the workflow engine, applies the
    decisions of the state machine and exposes a View for the presentation shell.

Engine calls fall into two categories. Blocking calls (GetSession, Submit) decide the
next state and surface their failures. Advisory calls (UpdateField, SendNotification)
are logged and swallowed so they can never hold up the workflow.

# Usage

	ctl := workflow.NewController(engineClient, sessionID, workflow.WithLogger(logger))
	res, err := ctl.Bootstrap(ctx)
	if res.Redirect != "" {
		// attach res.Redirect to the entry URL and start over
	}

	switch ctl.State() {
	case domain.StateEmailInput:
		err = ctl.SubmitEmail(ctx, "jane@example.org")
	case domain.StateForm:
		err = ctl.SubmitForm(ctx, values, issues)
	}
*/
package workflow
