package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmailLogEntry records one send attempt, success or not. The reminder hard
// cap is counted from this history rather than from the deferral record.
type EmailLogEntry struct {
	ID        uuid.UUID `db:"id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Recipient string    `db:"recipient"`
	EmailType EmailType `db:"email_type"`
	Success   bool      `db:"success"`
	SentAt    time.Time `db:"sent_at"`
}
