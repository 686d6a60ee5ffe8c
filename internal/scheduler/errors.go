package scheduler

import (
	"errors"
	"fmt"
)

var (
	errNoJobs       = errors.New("no jobs")
	errEmptyJobID   = errors.New("empty job id")
	errDuplicateJob = errors.New("duplicate job id")
	errNilSchedule  = errors.New("nil schedule")
	errNilRun       = errors.New("nil run func")
	errStarted      = errors.New("scheduler already started")
)

// PanicError carries a value recovered from a panicking job.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}
