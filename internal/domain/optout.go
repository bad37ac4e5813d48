package domain

import (
	"time"

	"github.com/google/uuid"
)

// OptOut is a permanent suppression record. Its presence blocks reopening of
// used tokens and re-enrollment into the reminder cycle.
type OptOut struct {
	OwnerID   uuid.UUID `db:"owner_id"`
	Reason    *string   `db:"reason"`
	LinkToken string    `db:"link_token"`
	OptedOut  time.Time `db:"opted_out_at"`
}
