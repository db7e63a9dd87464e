package util

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// ShortID returns a 22-character URL-safe public identifier backed by a
// random UUID. Groups are addressed by this value externally so the numeric
// storage keys never leak.
func ShortID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}
