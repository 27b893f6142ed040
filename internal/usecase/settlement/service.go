package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldpay/cashcollector-backend/internal/domain"
	"github.com/fieldpay/cashcollector-backend/internal/lock"
)

// Service handles settlement (pay-down) operations
type Service struct {
	CollectorRepo domain.CollectorRepository
	TaskRepo      domain.TaskRepository
	Ledger        domain.LedgerRepository

	Locks           *lock.Keyed
	ThresholdAmount decimal.Decimal
}

// NewService creates a new settlement Service instance
func NewService(
	collectorRepo domain.CollectorRepository,
	taskRepo domain.TaskRepository,
	ledger domain.LedgerRepository,
	locks *lock.Keyed,
	thresholdAmount decimal.Decimal,
) *Service {
	return &Service{
		CollectorRepo:   collectorRepo,
		TaskRepo:        taskRepo,
		Ledger:          ledger,
		Locks:           locks,
		ThresholdAmount: thresholdAmount,
	}
}

// PayAll settles the collector's entire balance.
// Resets the balance to zero, clears the freeze latch, and zeroes the
// remaining amount of every outstanding task. Idempotent: a second call
// finds nothing outstanding and rewrites the same zero state.
func (s *Service) PayAll(ctx context.Context, collectorID uuid.UUID) error {
	s.Locks.Lock(collectorID)
	defer s.Locks.Unlock(collectorID)

	collector, err := s.CollectorRepo.GetByID(ctx, collectorID)
	if err != nil {
		return err
	}

	tasks, err := s.TaskRepo.ListOutstanding(ctx, collectorID)
	if err != nil {
		return err
	}

	collector.Collected = decimal.Zero
	collector.ReachedLimitAt = nil
	for _, task := range tasks {
		task.RemainingAmount = decimal.Zero
	}

	return s.Ledger.SaveSettlement(ctx, collector, tasks)
}

// PaySome applies a partial payment against the collector's balance and
// against outstanding tasks in FIFO order.
//
// Logic:
//  1. Reject with ErrInvalidAmount if the payment is zero or negative, the
//     balance is zero, or the payment exceeds the balance. A payment equal
//     to the balance is accepted
//  2. Deduct the payment from the collector's balance
//  3. Walk outstanding tasks oldest first with the running payment:
//     a task whose remaining amount fits the running payment is fully
//     settled and the walk continues; the first task larger than the
//     running payment absorbs the rest and the walk stops there
//  4. When the walk stops mid-task and the reduced balance is still at or
//     over the threshold, re-derive the freeze timestamp: the collected-at
//     of the first later task (by ID, across all collectors) whose amount
//     equals the threshold exactly. No qualifying task leaves the latch unset
//  5. After the walk, a balance under the threshold always clears the latch
//  6. Persist the collector and every task touched by the walk atomically
//
// The re-anchoring scan in step 4 assumes the collection event that pushed
// the collector over the threshold can be found again by matching a task
// amount against the threshold. Downstream behavior depends on its literal
// output, including the cross-collector scope.
func (s *Service) PaySome(ctx context.Context, collectorID uuid.UUID, payment decimal.Decimal) error {
	s.Locks.Lock(collectorID)
	defer s.Locks.Unlock(collectorID)

	collector, err := s.CollectorRepo.GetByID(ctx, collectorID)
	if err != nil {
		return err
	}

	if payment.LessThanOrEqual(decimal.Zero) ||
		collector.Collected.IsZero() ||
		payment.GreaterThan(collector.Collected) {
		return domain.ErrInvalidAmount
	}

	collector.Collected = collector.Collected.Sub(payment)

	tasks, err := s.TaskRepo.ListOutstanding(ctx, collectorID)
	if err != nil {
		return err
	}

	remaining := payment
	touched := make([]*domain.Task, 0, len(tasks))

	for _, task := range tasks {
		touched = append(touched, task)

		if task.RemainingAmount.LessThanOrEqual(remaining) {
			remaining = remaining.Sub(task.RemainingAmount)
			task.RemainingAmount = decimal.Zero
			continue
		}

		// This task absorbs the rest of the payment; the walk stops here
		task.RemainingAmount = task.RemainingAmount.Sub(remaining)

		if collector.Collected.GreaterThanOrEqual(s.ThresholdAmount) {
			anchor, err := s.TaskRepo.FreezeAnchorDate(ctx, task.ID, s.ThresholdAmount)
			if err != nil {
				return err
			}
			collector.ReachedLimitAt = anchor
		}
		break
	}

	// Clearing takes precedence: a balance back under the threshold always
	// drops the latch, regardless of the re-anchoring result
	if collector.Collected.LessThan(s.ThresholdAmount) {
		collector.ReachedLimitAt = nil
	}

	return s.Ledger.SaveSettlement(ctx, collector, touched)
}
