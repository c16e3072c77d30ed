/*
Package domain contains the core domain models of the change request intake workflow.

It defines the session record persisted by the workflow engine, the workflow states
driven by the controller, the validation issues reported by the form, and the
payloads exchanged with the engine. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - SessionRecord: The engine's persisted view of one change request (Status, Answers, Classification).
  - State: The workflow step the controller is in (email input, classification, form, review, ...).
  - Tier: The project class (mini, standard, strategic) that selects the form variant.
  - ValidationIssue: A field-level problem with a severity, produced outside the core.
  - Submission / SubmitResult: The final request sent to the engine and its structured reply.
*/
package domain
