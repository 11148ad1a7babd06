package utils

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewRequestID returns a random 128-bit identifier rendered as 32 lowercase
// hex characters, without dashes.
func NewRequestID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
