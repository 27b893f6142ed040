package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fieldpay/cashcollector-backend/internal/domain"
)

// ledgerRepository implements domain.LedgerRepository
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// SaveCollection persists one collection event in a database transaction:
// the collected task and the updated collector balance/latch
func (r *ledgerRepository) SaveCollection(ctx context.Context, collector *domain.Collector, task *domain.Task) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	updateTaskQuery := `
		UPDATE tasks
		SET is_collected = $2, collected_at = $3
		WHERE id = $1
	`

	_, err = dbTx.ExecContext(ctx, updateTaskQuery,
		task.ID,
		task.IsCollected,
		task.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update collected task: %w", err)
	}

	if err := updateCollector(ctx, dbTx, collector); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SaveSettlement persists one settlement event in a database transaction:
// the updated collector balance/latch and every task touched by the walk
func (r *ledgerRepository) SaveSettlement(ctx context.Context, collector *domain.Collector, tasks []*domain.Task) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := updateCollector(ctx, dbTx, collector); err != nil {
		return err
	}

	updateTaskQuery := `
		UPDATE tasks
		SET remaining_amount = $2
		WHERE id = $1
	`

	for _, task := range tasks {
		_, err = dbTx.ExecContext(ctx, updateTaskQuery,
			task.ID,
			task.RemainingAmount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to update settled task: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// updateCollector writes the collector's balance and freeze latch
func updateCollector(ctx context.Context, dbTx *sql.Tx, collector *domain.Collector) error {
	query := `
		UPDATE collectors
		SET collected = $2, reached_limit_at = $3
		WHERE id = $1
	`

	_, err := dbTx.ExecContext(ctx, query,
		collector.ID,
		collector.Collected.String(),
		collector.ReachedLimitAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update collector: %w", err)
	}

	return nil
}
