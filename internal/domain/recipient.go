package domain

import (
	"time"

	"github.com/google/uuid"
)

// Recipient is a notification recipient. The rows are owned by the host
// system that enrolls people into the program; this service only reads them.
type Recipient struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	FullName  string    `db:"full_name"`
	CreatedAt time.Time `db:"created_at"`
}
