package freeze

import (
	"time"

	"github.com/fieldpay/cashcollector-backend/internal/domain"
)

// IsFrozen reports whether the collector is frozen at the given instant.
// A collector is frozen iff its freeze latch is set and the grace period
// has fully elapsed: reachedLimitAt + freezeAfter <= now. The boundary is
// inclusive — a collector is frozen at the exact end of the grace period.
// Pure: no side effects, no mutation.
func IsFrozen(c *domain.Collector, freezeAfter time.Duration, now time.Time) bool {
	if c.ReachedLimitAt == nil {
		return false
	}
	return !c.ReachedLimitAt.Add(freezeAfter).After(now)
}

// Check is the guard variant of IsFrozen: it returns domain.ErrFrozen when
// the collector is frozen and nil otherwise. Used before allowing a collection.
func Check(c *domain.Collector, freezeAfter time.Duration, now time.Time) error {
	if IsFrozen(c, freezeAfter, now) {
		return domain.ErrFrozen
	}
	return nil
}
