package core

import (
	"github.com/google/uuid"
)

// ID is an opaque domain identifier.
type ID string

// NewID creates a new time-ordered identifier using UUID v7, falling back
// to v4 if the host clock is unavailable to the UUID library.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

func (id ID) String() string { return string(id) }

func (id ID) IsEmpty() bool { return id == "" }

// Domain-specific ID types. RunID identifies one batch-engine execution;
// ChannelKey is a Channel's identity within its owning Recording.
type (
	RunID      ID
	ChannelKey ID
)

func (id RunID) String() string      { return ID(id).String() }
func (id ChannelKey) String() string { return ID(id).String() }

// ParseRunID validates and wraps a raw string as a RunID.
func ParseRunID(s string) (RunID, error) {
	if s == "" {
		return "", NewValidationError("run_id", "cannot be empty")
	}
	return RunID(s), nil
}
