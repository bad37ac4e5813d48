package repository

import (
	"context"
	"time"

	"github.com/badal-community/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	EmailTokens EmailTokens
	Deferrals   Deferrals
	Submissions Submissions
	OptOuts     OptOuts
	Drafts      Drafts
	EmailLog    EmailLog
	Recipients  Recipients

	db *sqlx.DB
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		EmailTokens: newEmailTokenRepository(db),
		Deferrals:   newDeferralRepository(db),
		Submissions: newSubmissionRepository(db),
		OptOuts:     newOptOutRepository(db),
		Drafts:      newDraftRepository(db),
		EmailLog:    newEmailLogRepository(db),
		Recipients:  newRecipientRepository(db),
		db:          db,
	}
}

// BeginTxx opens a primary-store transaction for the submit write sequence.
func (r *Repositories) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

type EmailTokens interface {
	Create(ctx context.Context, token *domain.EmailToken) error
	GetByLinkToken(ctx context.Context, linkToken string) (*domain.EmailToken, error)
	Activate(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Reopen(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkUsedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error
	SetPhoneVerified(ctx context.Context, id uuid.UUID, phone string, at time.Time) error
	SetOAuthInProgress(ctx context.Context, id uuid.UUID, inProgress bool) error
	ExpireOpenByOwner(ctx context.Context, ownerID uuid.UUID) error
	ListNeverOpened(ctx context.Context, sentBefore time.Time) ([]domain.EmailToken, error)
	ListStaleActivated(ctx context.Context, activatedBefore time.Time) ([]domain.EmailToken, error)
	DeleteTerminalBefore(ctx context.Context, before time.Time) (int64, error)
}

type Deferrals interface {
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Deferral, error)
	Create(ctx context.Context, deferral *domain.Deferral) error
	IncrementIfBelowCap(ctx context.Context, ownerID uuid.UUID, cap int) (bool, error)
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
	DeleteByOwnerTx(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID) error
	ListBelowCap(ctx context.Context, cap int) ([]domain.Deferral, error)
	ListAtCap(ctx context.Context, cap int) ([]domain.Deferral, error)
	DeleteWhereOwnerCompleted(ctx context.Context) (int64, error)
}

type Submissions interface {
	GetCompletedByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Submission, error)
	HasCompletedByOwner(ctx context.Context, ownerID uuid.UUID) (bool, error)
	CreatePending(ctx context.Context, submission *domain.Submission) error
	CreatePendingTx(ctx context.Context, tx *sqlx.Tx, submission *domain.Submission) error
	Promote(ctx context.Context, id uuid.UUID, externalUserID string) error
	PromoteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, externalUserID string) error
	DeletePending(ctx context.Context, id uuid.UUID) error
}

type OptOuts interface {
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.OptOut, error)
	Create(ctx context.Context, optOut *domain.OptOut) error
}

type Drafts interface {
	Upsert(ctx context.Context, draft *domain.Draft) error
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Draft, error)
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
	DeleteByOwnerTx(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID) error
}

// Recipients is read-only; recipient rows are owned by the host system.
type Recipients interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipient, error)
}

type EmailLog interface {
	Create(ctx context.Context, entry *domain.EmailLogEntry) error
	CountByOwner(ctx context.Context, ownerID uuid.UUID, emailType domain.EmailType) (int, error)
	ListRecent(ctx context.Context, limit int) ([]domain.EmailLogEntry, error)
}
