/*
Package intake is a session-driven workflow for organizational change requests.

A requester is identified by email, classified into a project class (mini,
standard or strategic), fills the form of that class and submits a structured
request to a remote workflow engine. The engine persists partial progress, so a
shareable session link resumes the request where it was left.

# Architecture

The module follows a hexagonal layout:

  - pkg/domain: session records, states, validation issues and errors.
  - pkg/fieldmap: the bijection between engine field keys and form field keys.
  - pkg/workflow: the state machine and the per-session Controller.
  - pkg/ports: the engine contract, split into blocking and advisory calls.
  - pkg/adapters: the HTTP engine client, a local engine with memory, Redis and
    SQLite stores, and the webhook server exposing it.
  - pkg/session and pkg/shell: one controller per session behind an HTTP/JSON shell.

# Usage

Wire everything from a configuration and serve it:

	cfg, err := config.Load("intake.yaml")
	if err != nil {
		log.Fatal(err)
	}
	app, err := intake.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()
	log.Fatal(http.ListenAndServe(cfg.Addr(), app.Handler()))

Or drive a single session directly:

	ctrl := workflow.NewController(engine.New("https://engine.example.com"), sessionID)
	if _, err := ctrl.Bootstrap(ctx); err != nil {
		return err
	}
	err := ctrl.SubmitEmail(ctx, "requester@example.com")
*/
package intake
