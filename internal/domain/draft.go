package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Draft is a partially filled form saved for later, one per owner. It is
// deleted on successful submission.
type Draft struct {
	OwnerID uuid.UUID       `db:"owner_id"`
	Payload json.RawMessage `db:"payload"`
	SavedAt time.Time       `db:"saved_at"`
}
