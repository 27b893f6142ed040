package collection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldpay/cashcollector-backend/internal/domain"
	"github.com/fieldpay/cashcollector-backend/internal/lock"
	"github.com/fieldpay/cashcollector-backend/internal/usecase/freeze"
)

// Service handles task collection operations
type Service struct {
	CollectorRepo domain.CollectorRepository
	TaskRepo      domain.TaskRepository
	Ledger        domain.LedgerRepository

	Locks           *lock.Keyed
	ThresholdAmount decimal.Decimal
	FreezeAfter     time.Duration

	// Now supplies the current time; overridable in tests
	Now func() time.Time
}

// NewService creates a new collection Service instance
func NewService(
	collectorRepo domain.CollectorRepository,
	taskRepo domain.TaskRepository,
	ledger domain.LedgerRepository,
	locks *lock.Keyed,
	thresholdAmount decimal.Decimal,
	freezeAfter time.Duration,
) *Service {
	return &Service{
		CollectorRepo:   collectorRepo,
		TaskRepo:        taskRepo,
		Ledger:          ledger,
		Locks:           locks,
		ThresholdAmount: thresholdAmount,
		FreezeAfter:     freezeAfter,
		Now:             time.Now,
	}
}

// ListCollected returns all tasks the collector has already collected,
// oldest first
func (s *Service) ListCollected(ctx context.Context, collectorID uuid.UUID) ([]*domain.Task, error) {
	return s.TaskRepo.ListCollected(ctx, collectorID)
}

// NextPending returns the FIFO-oldest pending task for the collector
// Returns domain.ErrNoAssignedTask if none exists
func (s *Service) NextPending(ctx context.Context, collectorID uuid.UUID) (*domain.Task, error) {
	return s.TaskRepo.NextPending(ctx, collectorID)
}

// Frozen reports whether the collector is currently frozen
func (s *Service) Frozen(ctx context.Context, collectorID uuid.UUID) (bool, error) {
	collector, err := s.CollectorRepo.GetByID(ctx, collectorID)
	if err != nil {
		return false, err
	}
	return freeze.IsFrozen(collector, s.FreezeAfter, s.Now()), nil
}

// Collect advances the collector's FIFO-oldest pending task to collected
// and updates the collector's running balance.
//
// Logic:
//  1. Fetch the collector and its next pending task (ErrNoAssignedTask if none)
//  2. Reject if the collector is currently frozen (ErrFrozen, no mutation)
//  3. Mark the task collected at the given time (defaults to now; an explicit
//     override exists solely so freeze timing can be tested deterministically)
//  4. Increase the collector's balance by the task amount
//  5. Latch the freeze timestamp if the latch is unset and the new balance
//     reached the threshold amount. The latch is one-shot: further
//     collections never move it, only a settlement clears it
//  6. Persist collector and task atomically
//
// Returns the collected task.
func (s *Service) Collect(ctx context.Context, collectorID uuid.UUID, at *time.Time) (*domain.Task, error) {
	s.Locks.Lock(collectorID)
	defer s.Locks.Unlock(collectorID)

	collector, err := s.CollectorRepo.GetByID(ctx, collectorID)
	if err != nil {
		return nil, err
	}

	task, err := s.TaskRepo.NextPending(ctx, collectorID)
	if err != nil {
		return nil, err
	}

	if err := freeze.Check(collector, s.FreezeAfter, s.Now()); err != nil {
		return nil, err
	}

	collectedAt := s.Now()
	if at != nil {
		collectedAt = *at
	}

	task.IsCollected = true
	task.CollectedAt = &collectedAt

	collector.Collected = collector.Collected.Add(task.Amount)
	if collector.ReachedLimitAt == nil && collector.Collected.GreaterThanOrEqual(s.ThresholdAmount) {
		collector.ReachedLimitAt = &collectedAt
	}

	if err := s.Ledger.SaveCollection(ctx, collector, task); err != nil {
		return nil, err
	}

	return task, nil
}
