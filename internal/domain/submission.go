package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusCompleted SubmissionStatus = "completed"
)

// TechStack is a deduplicated set of technology names, stored as JSON.
type TechStack []string

func (s TechStack) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *TechStack) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for TechStack: %T", value)
	}

	return json.Unmarshal(bytes, s)
}

// Submission is the finalized form payload. It is created pending, promoted
// to completed only after the directory mirror write succeeds, and a
// completed submission is final for its owner.
type Submission struct {
	ID             uuid.UUID        `db:"id"`
	OwnerID        uuid.UUID        `db:"owner_id"`
	Status         SubmissionStatus `db:"status"`
	ExternalUserID *string          `db:"external_user_id"`
	FullName       string           `db:"full_name"`
	Email          string           `db:"email"`
	Phone          string           `db:"phone"`
	GithubURL      *string          `db:"github_url"`
	OrgName        string           `db:"org_name"`
	OrgType        string           `db:"org_type"`
	OrgRefID       *string          `db:"org_ref_id"`
	City           *string          `db:"city"`
	TechStack      TechStack        `db:"tech_stack"`
	SubmittedAt    time.Time        `db:"submitted_at"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"`
}
