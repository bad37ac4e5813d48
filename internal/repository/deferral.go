package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/badal-community/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type deferralRepository struct {
	db *sqlx.DB
}

func newDeferralRepository(db *sqlx.DB) *deferralRepository {
	return &deferralRepository{
		db: db,
	}
}

func (r *deferralRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Deferral, error) {
	const op = "repository.deferral.GetByOwner"

	const query = `
    SELECT BIN_TO_UUID(owner_id) AS owner_id, attempts, deferred_at, created_at, updated_at
    FROM deferrals
    WHERE owner_id = uuid_to_bin(?)
    `

	var deferral domain.Deferral
	if err := r.db.GetContext(ctx, &deferral, query, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select deferral failed: %w", op, err)
	}

	return &deferral, nil
}

func (r *deferralRepository) Create(ctx context.Context, deferral *domain.Deferral) error {
	const op = "repository.deferral.Create"

	const query = `
    INSERT INTO deferrals (owner_id, attempts, deferred_at)
    VALUES (uuid_to_bin(:owner_id), :attempts, :deferred_at)
    `

	if _, err := r.db.NamedExecContext(ctx, query, deferral); err != nil {
		return fmt.Errorf("%s: insert deferral failed: %w", op, err)
	}

	return nil
}

// IncrementIfBelowCap bumps attempts only while it is still below the cap at
// write time, so concurrent sweeps converge instead of over-counting. It
// reports whether the increment happened.
func (r *deferralRepository) IncrementIfBelowCap(ctx context.Context, ownerID uuid.UUID, cap int) (bool, error) {
	const op = "repository.deferral.IncrementIfBelowCap"

	const query = `
    UPDATE deferrals
    SET attempts = attempts + 1, deferred_at = ?
    WHERE owner_id = uuid_to_bin(?) AND attempts < ?
    `

	res, err := r.db.ExecContext(ctx, query, time.Now(), ownerID, cap)
	if err != nil {
		return false, fmt.Errorf("%s: update deferral failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows == 1, nil
}

func (r *deferralRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	return deleteDeferralByOwner(ctx, r.db, ownerID)
}

func (r *deferralRepository) DeleteByOwnerTx(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID) error {
	return deleteDeferralByOwner(ctx, tx, ownerID)
}

func deleteDeferralByOwner(ctx context.Context, ext sqlx.ExtContext, ownerID uuid.UUID) error {
	const op = "repository.deferral.DeleteByOwner"

	const query = "DELETE FROM deferrals WHERE owner_id = uuid_to_bin(?)"

	if _, err := ext.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("%s: delete deferral failed: %w", op, err)
	}

	return nil
}

func (r *deferralRepository) ListBelowCap(ctx context.Context, cap int) ([]domain.Deferral, error) {
	const op = "repository.deferral.ListBelowCap"

	const query = `
    SELECT BIN_TO_UUID(owner_id) AS owner_id, attempts, deferred_at, created_at, updated_at
    FROM deferrals
    WHERE attempts < ?
    `

	var deferrals []domain.Deferral
	if err := r.db.SelectContext(ctx, &deferrals, query, cap); err != nil {
		return nil, fmt.Errorf("%s: select deferrals failed: %w", op, err)
	}

	return deferrals, nil
}

func (r *deferralRepository) ListAtCap(ctx context.Context, cap int) ([]domain.Deferral, error) {
	const op = "repository.deferral.ListAtCap"

	const query = `
    SELECT BIN_TO_UUID(owner_id) AS owner_id, attempts, deferred_at, created_at, updated_at
    FROM deferrals
    WHERE attempts >= ?
    `

	var deferrals []domain.Deferral
	if err := r.db.SelectContext(ctx, &deferrals, query, cap); err != nil {
		return nil, fmt.Errorf("%s: select deferrals failed: %w", op, err)
	}

	return deferrals, nil
}

// DeleteWhereOwnerCompleted drops every deferral whose owner already has a
// completed submission.
func (r *deferralRepository) DeleteWhereOwnerCompleted(ctx context.Context) (int64, error) {
	const op = "repository.deferral.DeleteWhereOwnerCompleted"

	const query = `
    DELETE d FROM deferrals d
    JOIN submissions s ON s.owner_id = d.owner_id AND s.status = 'completed'
    `

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%s: delete deferrals failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}
