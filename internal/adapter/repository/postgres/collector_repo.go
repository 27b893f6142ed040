package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldpay/cashcollector-backend/internal/domain"
)

// collectorRepository implements domain.CollectorRepository
type collectorRepository struct {
	db *DB
}

// NewCollectorRepository creates a new collector repository
func NewCollectorRepository(db *DB) domain.CollectorRepository {
	return &collectorRepository{db: db}
}

// GetByID retrieves a collector by its ID
func (r *collectorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Collector, error) {
	query := `
		SELECT id, username, manager_id, collected, reached_limit_at
		FROM collectors
		WHERE id = $1
	`

	var collector domain.Collector
	var managerID sql.NullString
	var collectedStr string
	var reachedLimitAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&collector.ID,
		&collector.Username,
		&managerID,
		&collectedStr,
		&reachedLimitAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCollectorNotFound
		}
		return nil, fmt.Errorf("failed to get collector by ID: %w", err)
	}

	// Parse manager_id (nullable)
	if managerID.Valid {
		managerUUID, err := uuid.Parse(managerID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse manager_id: %w", err)
		}
		collector.ManagerID = &managerUUID
	}

	// Parse collected (DECIMAL)
	collected, err := decimal.NewFromString(collectedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse collected: %w", err)
	}
	collector.Collected = collected

	if reachedLimitAt.Valid {
		t := reachedLimitAt.Time
		collector.ReachedLimitAt = &t
	}

	return &collector, nil
}
