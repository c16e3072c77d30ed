package domain

// Field constants shared by the wire format and the hydration rules.
const (
	// KeyProjectClass is the backend answer key holding the tier when it is
	// stored alongside the form answers.
	KeyProjectClass = "projektklasse"

	// KeyProjectClassInClassification is the classification entry holding the tier.
	KeyProjectClassInClassification = "projectClass"

	// KeyContactEmail is the form value used as the submission email when no
	// requester email was captured.
	KeyContactEmail = "ansprechpartner_email"
)

// Routing tags understood by the engine's change-chat endpoint.
const (
	SourceFormAutosave = "form_autosave"
	SourceWelcomeEmail = "welcome_email"
	SourceFormSubmit   = "form_submit"
)

// Sentinel addresses meaning "no real email yet".
const (
	SentinelNoReply   = "noreply@example.com"
	SentinelAnonymous = "anonymous@chat.local"
)

// FallbackEmail is sent on submission when neither a requester nor a contact email is known.
const FallbackEmail = SentinelNoReply
