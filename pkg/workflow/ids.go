package workflow

import (
	"encoding/hex"

	"github.com/aretw0/intake/pkg/ports"
	"github.com/google/uuid"
)

// NewSessionID returns a 12 character lowercase hex identifier taken from the
// random part of a version 4 UUID (48 bits).
func NewSessionID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:6])
}

// RandomIDs is the default session ID generator.
var RandomIDs ports.IDGenerator = ports.IDGeneratorFunc(NewSessionID)
