package intake

// Version is the release of the intake module. It is overridden at build time with
// -ldflags "-X github.com/aretw0/intake.Version=...".
var Version = "0.3.0-dev"
