package core

import (
	"errors"
	"fmt"
)

// Domain-level sentinel errors, centralized so call sites can use
// errors.Is instead of comparing strings.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrChannelNotFound     = fmt.Errorf("%w: channel", ErrNotFound)
	ErrTrialNotFound       = fmt.Errorf("%w: trial", ErrNotFound)
	ErrInsufficientData    = errors.New("insufficient data for analysis")
	ErrNonUniformTrials    = errors.New("trials do not share a common length")
	ErrWindowOutOfRange    = errors.New("window outside trace bounds")
	ErrUnknownAnalysis     = errors.New("unknown analysis")
	ErrUnknownPipelineStep = errors.New("unknown pipeline step")
	ErrNonPositiveRate     = errors.New("sampling rate must be positive")
)

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
