package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/badal-community/backend/internal/db"
	"github.com/badal-community/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type emailTokenRepository struct {
	db *sqlx.DB
}

func newEmailTokenRepository(db *sqlx.DB) *emailTokenRepository {
	return &emailTokenRepository{
		db: db,
	}
}

const emailTokenColumns = `
    BIN_TO_UUID(id) AS id, BIN_TO_UUID(owner_id) AS owner_id, link_token,
    email_type, status, sent_at, activated_at, used_at, verified_phone,
    phone_verified_at, oauth_in_progress, created_at, updated_at
`

func (r *emailTokenRepository) Create(ctx context.Context, token *domain.EmailToken) error {
	const op = "repository.emailToken.Create"

	const query = `
    INSERT INTO email_tokens (id, owner_id, link_token, email_type, status, sent_at, oauth_in_progress)
    VALUES (uuid_to_bin(:id), uuid_to_bin(:owner_id), :link_token, :email_type, :status, :sent_at, :oauth_in_progress)
    `

	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert email token failed: %w", op, err)
	}

	return nil
}

func (r *emailTokenRepository) GetByLinkToken(ctx context.Context, linkToken string) (*domain.EmailToken, error) {
	const op = "repository.emailToken.GetByLinkToken"

	query := "SELECT " + emailTokenColumns + " FROM email_tokens WHERE link_token = ?"

	var token domain.EmailToken
	if err := r.db.GetContext(ctx, &token, query, linkToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select email token failed: %w", op, err)
	}

	return &token, nil
}

// Activate stamps activated_at only when still unset. First open wins; it
// reports whether this call was the first open.
func (r *emailTokenRepository) Activate(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	const op = "repository.emailToken.Activate"

	const query = `
    UPDATE email_tokens
    SET activated_at = ?
    WHERE id = uuid_to_bin(?) AND activated_at IS NULL AND used_at IS NULL
    `

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return false, fmt.Errorf("%s: update email token failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows == 1, nil
}

// Reopen clears used_at and restarts the activation clock. Only a closed
// token can be reopened.
func (r *emailTokenRepository) Reopen(ctx context.Context, id uuid.UUID, at time.Time) error {
	const op = "repository.emailToken.Reopen"

	const query = `
    UPDATE email_tokens
    SET used_at = NULL, status = 'sent', activated_at = ?
    WHERE id = uuid_to_bin(?) AND used_at IS NOT NULL
    `

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("%s: update email token failed: %w", op, err)
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

func (r *emailTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return markUsed(ctx, r.db, id, at)
}

func (r *emailTokenRepository) MarkUsedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error {
	return markUsed(ctx, tx, id, at)
}

func markUsed(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID, at time.Time) error {
	const op = "repository.emailToken.MarkUsed"

	const query = `
    UPDATE email_tokens
    SET used_at = ?, status = 'used'
    WHERE id = uuid_to_bin(?) AND used_at IS NULL
    `

	res, err := ext.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("%s: update email token failed: %w", op, err)
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

func (r *emailTokenRepository) SetPhoneVerified(ctx context.Context, id uuid.UUID, phone string, at time.Time) error {
	const op = "repository.emailToken.SetPhoneVerified"

	const query = `
    UPDATE email_tokens
    SET verified_phone = ?, phone_verified_at = ?
    WHERE id = uuid_to_bin(?) AND used_at IS NULL
    `

	res, err := r.db.ExecContext(ctx, query, phone, at, id)
	if err != nil {
		return fmt.Errorf("%s: update email token failed: %w", op, err)
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

func (r *emailTokenRepository) SetOAuthInProgress(ctx context.Context, id uuid.UUID, inProgress bool) error {
	const op = "repository.emailToken.SetOAuthInProgress"

	const query = `
    UPDATE email_tokens
    SET oauth_in_progress = ?
    WHERE id = uuid_to_bin(?) AND used_at IS NULL
    `

	if _, err := r.db.ExecContext(ctx, query, inProgress, id); err != nil {
		return fmt.Errorf("%s: update email token failed: %w", op, err)
	}

	return nil
}

// ExpireOpenByOwner closes every open token of the owner without stamping
// used_at, so the tokens count as expired rather than consumed.
func (r *emailTokenRepository) ExpireOpenByOwner(ctx context.Context, ownerID uuid.UUID) error {
	const op = "repository.emailToken.ExpireOpenByOwner"

	const query = `
    UPDATE email_tokens
    SET status = 'expired'
    WHERE owner_id = uuid_to_bin(?) AND status = 'sent' AND used_at IS NULL
    `

	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("%s: update email tokens failed: %w", op, err)
	}

	return nil
}

func (r *emailTokenRepository) ListNeverOpened(ctx context.Context, sentBefore time.Time) ([]domain.EmailToken, error) {
	const op = "repository.emailToken.ListNeverOpened"

	query := "SELECT " + emailTokenColumns + `
    FROM email_tokens
    WHERE status = 'sent' AND activated_at IS NULL AND used_at IS NULL AND sent_at < ?
    `

	var tokens []domain.EmailToken
	if err := r.db.SelectContext(ctx, &tokens, query, sentBefore); err != nil {
		return nil, fmt.Errorf("%s: select email tokens failed: %w", op, err)
	}

	return tokens, nil
}

func (r *emailTokenRepository) ListStaleActivated(ctx context.Context, activatedBefore time.Time) ([]domain.EmailToken, error) {
	const op = "repository.emailToken.ListStaleActivated"

	query := "SELECT " + emailTokenColumns + `
    FROM email_tokens
    WHERE status = 'sent' AND used_at IS NULL AND oauth_in_progress = 0
      AND activated_at IS NOT NULL AND activated_at <= ?
    `

	var tokens []domain.EmailToken
	if err := r.db.SelectContext(ctx, &tokens, query, activatedBefore); err != nil {
		return nil, fmt.Errorf("%s: select email tokens failed: %w", op, err)
	}

	return tokens, nil
}

func (r *emailTokenRepository) DeleteTerminalBefore(ctx context.Context, before time.Time) (int64, error) {
	const op = "repository.emailToken.DeleteTerminalBefore"

	const query = `
    DELETE FROM email_tokens
    WHERE status IN ('expired', 'used', 'failed') AND sent_at < ?
    `

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("%s: delete email tokens failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}
