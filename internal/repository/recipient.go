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

// recipientRepository is read-only: recipient rows are owned by the host
// system, this service never creates or deletes them.
type recipientRepository struct {
	db *sqlx.DB
}

func newRecipientRepository(db *sqlx.DB) *recipientRepository {
	return &recipientRepository{
		db: db,
	}
}

func (r *recipientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipient, error) {
	const op = "repository.recipient.GetByID"

	const query = `
    SELECT BIN_TO_UUID(id) AS id, email, full_name, created_at
    FROM recipients
    WHERE id = uuid_to_bin(?)
    `

	var recipient domain.Recipient
	if err := r.db.GetContext(ctx, &recipient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select recipient failed: %w", op, err)
	}

	return &recipient, nil
}
