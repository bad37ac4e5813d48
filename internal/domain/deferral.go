package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxDeferralAttempts is the hard cap on reminder attempts per owner.
const MaxDeferralAttempts = 3

// Deferral tracks reminder attempts for a non-responsive recipient. At most
// one exists per owner; attempts only ever grows and is clamped at the cap.
type Deferral struct {
	OwnerID    uuid.UUID `db:"owner_id"`
	Attempts   int       `db:"attempts"`
	DeferredAt time.Time `db:"deferred_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// AtCap reports whether the owner has exhausted reminder attempts.
func (d *Deferral) AtCap() bool {
	return d.Attempts >= MaxDeferralAttempts
}
