package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Collector represents a field cash collector in the domain layer
// Adheres to the data model defined in specs
type Collector struct {
	ID        uuid.UUID
	Username  string
	ManagerID *uuid.UUID // NULL if the collector has no manager assigned

	// Collected is the running balance of cash the collector has picked up
	// but not yet settled. Increased by collection events, decreased by
	// settlement events. Never negative.
	Collected decimal.Decimal

	// ReachedLimitAt is the freeze latch: the timestamp of the collection
	// event that first pushed Collected to/over the threshold amount.
	// NULL while the collector is clear. Only a settlement clears or moves it.
	ReachedLimitAt *time.Time
}

// Validate ensures the collector adheres to domain rules
// Returns an error if validation fails
func (c *Collector) Validate() error {
	if c.Username == "" {
		return errors.New("collector username cannot be empty")
	}

	if c.Collected.IsNegative() {
		return errors.New("collected balance cannot be negative")
	}

	return nil
}
