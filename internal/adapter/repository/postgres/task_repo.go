package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldpay/cashcollector-backend/internal/domain"
)

const taskColumns = `id, assigned_to, name, description, due_date, amount, remaining_amount, is_collected, collected_at`

// taskRepository implements domain.TaskRepository
type taskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) domain.TaskRepository {
	return &taskRepository{db: db}
}

// NextPending retrieves the FIFO-oldest pending task for the collector
func (r *taskRepository) NextPending(ctx context.Context, collectorID uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE assigned_to = $1 AND is_collected = FALSE
		ORDER BY id
		LIMIT 1
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, collectorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoAssignedTask
		}
		return nil, fmt.Errorf("failed to get next pending task: %w", err)
	}

	return task, nil
}

// ListCollected retrieves all collected tasks for the collector, oldest first
func (r *taskRepository) ListCollected(ctx context.Context, collectorID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE assigned_to = $1 AND is_collected = TRUE
		ORDER BY id
	`

	return r.queryTasks(ctx, query, collectorID)
}

// ListOutstanding retrieves all tasks for the collector with remaining
// amount above zero, oldest first
func (r *taskRepository) ListOutstanding(ctx context.Context, collectorID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE assigned_to = $1 AND remaining_amount > 0
		ORDER BY id
	`

	return r.queryTasks(ctx, query, collectorID)
}

// FreezeAnchorDate retrieves the collected-at timestamp of the first task
// after afterTaskID whose amount equals the given amount exactly.
// Deliberately unfiltered by collector: the settlement engine's re-anchoring
// rule scans across all collectors.
func (r *taskRepository) FreezeAnchorDate(ctx context.Context, afterTaskID int64, amount decimal.Decimal) (*time.Time, error) {
	query := `
		SELECT collected_at
		FROM tasks
		WHERE id > $1 AND amount = $2
		ORDER BY id
		LIMIT 1
	`

	var collectedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, afterTaskID, amount.String()).Scan(&collectedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get freeze anchor date: %w", err)
	}

	if !collectedAt.Valid {
		return nil, nil
	}
	t := collectedAt.Time
	return &t, nil
}

// queryTasks runs a multi-row task query and scans the results
func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTask scans one task row, parsing nullable and decimal columns
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	var amountStr, remainingStr string
	var collectedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.AssignedTo,
		&task.Name,
		&description,
		&task.DueDate,
		&amountStr,
		&remainingStr,
		&task.IsCollected,
		&collectedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	if description.Valid {
		task.Description = description.String
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	task.Amount = amount

	remaining, err := decimal.NewFromString(remainingStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remaining_amount: %w", err)
	}
	task.RemainingAmount = remaining

	if collectedAt.Valid {
		t := collectedAt.Time
		task.CollectedAt = &t
	}

	return &task, nil
}
