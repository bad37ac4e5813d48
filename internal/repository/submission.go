package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/badal-community/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type submissionRepository struct {
	db *sqlx.DB
}

func newSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{
		db: db,
	}
}

const submissionColumns = `
    BIN_TO_UUID(id) AS id, BIN_TO_UUID(owner_id) AS owner_id, status,
    external_user_id, full_name, email, phone, github_url, org_name,
    org_type, org_ref_id, city, tech_stack, submitted_at, created_at, updated_at
`

func (r *submissionRepository) GetCompletedByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Submission, error) {
	const op = "repository.submission.GetCompletedByOwner"

	query := "SELECT " + submissionColumns + `
    FROM submissions
    WHERE owner_id = uuid_to_bin(?) AND status = 'completed'
    `

	var submission domain.Submission
	if err := r.db.GetContext(ctx, &submission, query, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select submission failed: %w", op, err)
	}

	return &submission, nil
}

func (r *submissionRepository) HasCompletedByOwner(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	const op = "repository.submission.HasCompletedByOwner"

	const query = `
    SELECT COUNT(*) FROM submissions
    WHERE owner_id = uuid_to_bin(?) AND status = 'completed'
    `

	var count int
	if err := r.db.GetContext(ctx, &count, query, ownerID); err != nil {
		return false, fmt.Errorf("%s: count submissions failed: %w", op, err)
	}

	return count > 0, nil
}

func (r *submissionRepository) CreatePending(ctx context.Context, submission *domain.Submission) error {
	return createPending(ctx, r.db, submission)
}

func (r *submissionRepository) CreatePendingTx(ctx context.Context, tx *sqlx.Tx, submission *domain.Submission) error {
	return createPending(ctx, tx, submission)
}

func createPending(ctx context.Context, ext sqlx.ExtContext, submission *domain.Submission) error {
	const op = "repository.submission.CreatePending"

	const query = `
    INSERT INTO submissions (id, owner_id, status, full_name, email, phone, github_url,
                             org_name, org_type, org_ref_id, city, tech_stack, submitted_at)
    VALUES (uuid_to_bin(:id), uuid_to_bin(:owner_id), 'pending', :full_name, :email, :phone, :github_url,
            :org_name, :org_type, :org_ref_id, :city, :tech_stack, :submitted_at)
    `

	if _, err := sqlx.NamedExecContext(ctx, ext, query, submission); err != nil {
		return fmt.Errorf("%s: insert submission failed: %w", op, err)
	}

	return nil
}

func (r *submissionRepository) Promote(ctx context.Context, id uuid.UUID, externalUserID string) error {
	return promote(ctx, r.db, id, externalUserID)
}

func (r *submissionRepository) PromoteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, externalUserID string) error {
	return promote(ctx, tx, id, externalUserID)
}

// promote completes only a currently pending submission, so a double submit
// cannot produce two completed rows from one pending write.
func promote(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID, externalUserID string) error {
	const op = "repository.submission.Promote"

	const query = `
    UPDATE submissions
    SET status = 'completed', external_user_id = ?
    WHERE id = uuid_to_bin(?) AND status = 'pending'
    `

	res, err := ext.ExecContext(ctx, query, externalUserID, id)
	if err != nil {
		return fmt.Errorf("%s: update submission failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

// DeletePending is the compensation when the directory mirror write fails
// after the pending row was created without a transaction.
func (r *submissionRepository) DeletePending(ctx context.Context, id uuid.UUID) error {
	const op = "repository.submission.DeletePending"

	const query = "DELETE FROM submissions WHERE id = uuid_to_bin(?) AND status = 'pending'"

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: delete submission failed: %w", op, err)
	}

	return nil
}
