package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("maximum concurrent runs reached")
	ErrRunNotFound      = errors.New("run not found or already finished")
	ErrRunCancelled     = errors.New("run cancelled by user")
	ErrRunTimeout       = errors.New("run timed out")
	ErrEmptyURL         = errors.New("url is required")
	ErrNoCollaborator   = errors.New("collaborator not configured")
)

// CapacityError is returned when admission control rejects a run.
type CapacityError struct {
	Active int
	Limit  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v (%d/%d active), retry later", ErrCapacityExceeded, e.Active, e.Limit)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// StageError records which stage ended a run and why.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
