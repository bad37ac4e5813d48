package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/badal-community/backend/internal/db"
	"github.com/badal-community/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type optOutRepository struct {
	db *sqlx.DB
}

func newOptOutRepository(db *sqlx.DB) *optOutRepository {
	return &optOutRepository{
		db: db,
	}
}

func (r *optOutRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.OptOut, error) {
	const op = "repository.optOut.GetByOwner"

	const query = `
    SELECT BIN_TO_UUID(owner_id) AS owner_id, reason, link_token, opted_out_at
    FROM opt_outs
    WHERE owner_id = uuid_to_bin(?)
    `

	var optOut domain.OptOut
	if err := r.db.GetContext(ctx, &optOut, query, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select opt-out failed: %w", op, err)
	}

	return &optOut, nil
}

func (r *optOutRepository) Create(ctx context.Context, optOut *domain.OptOut) error {
	const op = "repository.optOut.Create"

	const query = `
    INSERT INTO opt_outs (owner_id, reason, link_token, opted_out_at)
    VALUES (uuid_to_bin(:owner_id), :reason, :link_token, :opted_out_at)
    `

	if _, err := r.db.NamedExecContext(ctx, query, optOut); err != nil {
		if db.IsDuplicateEntry(err) {
			// Already suppressed; opting out twice is not an error.
			return nil
		}
		return fmt.Errorf("%s: insert opt-out failed: %w", op, err)
	}

	return nil
}
