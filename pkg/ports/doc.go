/*
Package ports defines the driven ports (interfaces) of the intake workflow.

These interfaces decouple the workflow controller from the remote workflow engine,
from the stores backing the local engine, and from distributed coordination.

# Key Interfaces

  - BlockingEngine: Calls whose outcome decides the next workflow state (GetSession, Submit).
  - AdvisoryEngine: Best-effort writes whose failure never blocks the workflow (UpdateField, SendNotification).
  - RecordStore: Persists session records for the local engine.
  - DistributedLocker: Serializes blocking actions on one session across replicas.
  - IDGenerator: Produces new session identifiers.
*/
package ports
