package repository

import (
	"context"
	"fmt"

	"github.com/badal-community/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type emailLogRepository struct {
	db *sqlx.DB
}

func newEmailLogRepository(db *sqlx.DB) *emailLogRepository {
	return &emailLogRepository{
		db: db,
	}
}

func (r *emailLogRepository) Create(ctx context.Context, entry *domain.EmailLogEntry) error {
	const op = "repository.emailLog.Create"

	const query = `
    INSERT INTO email_log (id, owner_id, recipient, email_type, success, sent_at)
    VALUES (uuid_to_bin(:id), uuid_to_bin(:owner_id), :recipient, :email_type, :success, :sent_at)
    `

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("%s: insert email log failed: %w", op, err)
	}

	return nil
}

func (r *emailLogRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID, emailType domain.EmailType) (int, error) {
	const op = "repository.emailLog.CountByOwner"

	const query = `
    SELECT COUNT(*) FROM email_log
    WHERE owner_id = uuid_to_bin(?) AND email_type = ?
    `

	var count int
	if err := r.db.GetContext(ctx, &count, query, ownerID, emailType); err != nil {
		return 0, fmt.Errorf("%s: count email log failed: %w", op, err)
	}

	return count, nil
}

func (r *emailLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.EmailLogEntry, error) {
	const op = "repository.emailLog.ListRecent"

	const query = `
    SELECT BIN_TO_UUID(id) AS id, BIN_TO_UUID(owner_id) AS owner_id, recipient, email_type, success, sent_at
    FROM email_log
    ORDER BY sent_at DESC
    LIMIT ?
    `

	var entries []domain.EmailLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("%s: select email log failed: %w", op, err)
	}

	return entries, nil
}
