package service

import (
	"errors"
	"fmt"

	"github.com/scriptforge/api/internal/model"
)

// ErrValidation marks semantic validation failures the struct validator
// cannot catch (e.g. a scene job without a scene target).
var ErrValidation = errors.New("validation error")

// ErrNotReady marks a result poll against a job that has not reached a
// terminal state. Callers must be able to tell "keep polling" apart from
// both success and failure.
var ErrNotReady = errors.New("job not ready")

// NotReadyError carries the in-flight status so the API can answer the
// poll without a second ledger read.
type NotReadyError struct {
	JobID  string
	Status model.JobStatus
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("job %s not ready (status %s)", e.JobID, e.Status)
}

func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady
}
