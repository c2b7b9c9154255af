package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidSchedule is returned for a malformed daily schedule expression
	ErrInvalidSchedule = errors.New("invalid schedule expression")

	// ErrUnknownJobKind is returned when an executor receives a job it does not handle
	ErrUnknownJobKind = errors.New("unknown job kind")
)
