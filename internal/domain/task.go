package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Task represents one unit of cash to be collected on a collector's route
// Adheres to the data model defined in specs
type Task struct {
	ID          int64 // Serial identity; ascending ID order is the FIFO order
	AssignedTo  uuid.UUID
	Name        string
	Description string
	DueDate     time.Time

	// Amount is the fixed cash value owed. Immutable after creation.
	Amount decimal.Decimal

	// RemainingAmount starts at Amount and decreases toward zero as
	// settlements are applied. Never negative, never above Amount.
	RemainingAmount decimal.Decimal

	IsCollected bool
	CollectedAt *time.Time // Set exactly once when collected, NULL before
}

// Validate ensures the task adheres to domain rules
// Returns an error if validation fails
func (t *Task) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("task amount must be positive")
	}

	if t.RemainingAmount.IsNegative() {
		return errors.New("task remaining amount cannot be negative")
	}

	if t.RemainingAmount.GreaterThan(t.Amount) {
		return errors.New("task remaining amount cannot exceed amount")
	}

	// CollectedAt is set if and only if the task is collected
	if t.IsCollected && t.CollectedAt == nil {
		return errors.New("collected task must have a collected at timestamp")
	}
	if !t.IsCollected && t.CollectedAt != nil {
		return errors.New("pending task cannot have a collected at timestamp")
	}

	return nil
}
