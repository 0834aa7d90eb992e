// Package id generates the public identifiers used across the service.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns a random identifier of exactly 32 lowercase hex
// characters, used for loan and user ids.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewUploadID returns the correlation id stored beside an uploaded artifact.
func NewUploadID() string { return uuid.NewString() }

// NewRunID identifies one sweep run; it is also the value held in per-loan claims.
func NewRunID() string { return "run-" + NewID32() }
