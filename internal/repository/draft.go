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

type draftRepository struct {
	db *sqlx.DB
}

func newDraftRepository(db *sqlx.DB) *draftRepository {
	return &draftRepository{
		db: db,
	}
}

func (r *draftRepository) Upsert(ctx context.Context, draft *domain.Draft) error {
	const op = "repository.draft.Upsert"

	const query = `
    INSERT INTO drafts (owner_id, payload, saved_at)
    VALUES (uuid_to_bin(:owner_id), :payload, :saved_at)
    ON DUPLICATE KEY UPDATE payload = VALUES(payload), saved_at = VALUES(saved_at)
    `

	if _, err := r.db.NamedExecContext(ctx, query, draft); err != nil {
		return fmt.Errorf("%s: upsert draft failed: %w", op, err)
	}

	return nil
}

func (r *draftRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Draft, error) {
	const op = "repository.draft.GetByOwner"

	const query = `
    SELECT BIN_TO_UUID(owner_id) AS owner_id, payload, saved_at
    FROM drafts
    WHERE owner_id = uuid_to_bin(?)
    `

	var draft domain.Draft
	if err := r.db.GetContext(ctx, &draft, query, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select draft failed: %w", op, err)
	}

	return &draft, nil
}

func (r *draftRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	return deleteDraftByOwner(ctx, r.db, ownerID)
}

func (r *draftRepository) DeleteByOwnerTx(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID) error {
	return deleteDraftByOwner(ctx, tx, ownerID)
}

func deleteDraftByOwner(ctx context.Context, ext sqlx.ExtContext, ownerID uuid.UUID) error {
	const op = "repository.draft.DeleteByOwner"

	const query = "DELETE FROM drafts WHERE owner_id = uuid_to_bin(?)"

	if _, err := ext.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("%s: delete draft failed: %w", op, err)
	}

	return nil
}
