package domain

import "errors"

// Business errors surfaced to callers. These are expected rejections, not
// transient faults: every one leaves prior state untouched.
var (
	// ErrNoAssignedTask is returned when a collector has no pending task
	// to collect or read.
	ErrNoAssignedTask = errors.New("no assigned tasks")

	// ErrFrozen is returned when a frozen collector attempts a collection.
	ErrFrozen = errors.New("collector is frozen and can not collect any tasks")

	// ErrInvalidAmount is returned for a settlement payment that is zero,
	// negative, or exceeds the collector's current balance.
	ErrInvalidAmount = errors.New("invalid collected amount")

	// ErrCollectorNotFound is returned when a collector lookup matches no record.
	ErrCollectorNotFound = errors.New("collector not found")

	// ErrTaskNotFound is returned when a task lookup matches no record.
	ErrTaskNotFound = errors.New("task not found")
)
