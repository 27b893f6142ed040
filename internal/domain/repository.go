package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectorRepository defines the interface for collector persistence operations
type CollectorRepository interface {
	// GetByID retrieves a collector by its ID
	// Returns ErrCollectorNotFound if no collector matches
	GetByID(ctx context.Context, id uuid.UUID) (*Collector, error)
}

// TaskRepository defines the interface for task persistence operations
type TaskRepository interface {
	// NextPending retrieves the FIFO-oldest pending task assigned to the
	// collector (lowest ID with is_collected = false)
	// Returns ErrNoAssignedTask if the collector has no pending task
	NextPending(ctx context.Context, collectorID uuid.UUID) (*Task, error)

	// ListCollected retrieves all collected tasks assigned to the collector,
	// ordered by ID ascending
	ListCollected(ctx context.Context, collectorID uuid.UUID) ([]*Task, error)

	// ListOutstanding retrieves all tasks assigned to the collector with a
	// remaining amount above zero, ordered by ID ascending (oldest first)
	ListOutstanding(ctx context.Context, collectorID uuid.UUID) ([]*Task, error)

	// FreezeAnchorDate retrieves the collected-at timestamp of the first
	// task after afterTaskID (by ID ascending, across ALL collectors) whose
	// amount equals the given amount exactly. Returns nil when no such task
	// exists. The cross-collector scope mirrors the settlement engine's
	// re-anchoring rule and must not be narrowed.
	FreezeAnchorDate(ctx context.Context, afterTaskID int64, amount decimal.Decimal) (*time.Time, error)
}

// LedgerRepository defines the atomic write operations of the ledger.
// Each call commits all its updates in one transaction or none of them.
type LedgerRepository interface {
	// SaveCollection persists the outcome of one collection event:
	// the updated collector balance/latch and the collected task
	SaveCollection(ctx context.Context, collector *Collector, task *Task) error

	// SaveSettlement persists the outcome of one settlement event:
	// the updated collector balance/latch and every task touched by the walk
	SaveSettlement(ctx context.Context, collector *Collector, tasks []*Task) error
}
