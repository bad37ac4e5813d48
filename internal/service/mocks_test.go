package service

import (
	"context"
	"time"

	"github.com/badal-community/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type enqueuerMock struct{ mock.Mock }

func (m *enqueuerMock) EnqueueContext(ctx context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

type emailTokensMock struct{ mock.Mock }

func (m *emailTokensMock) Create(ctx context.Context, token *domain.EmailToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *emailTokensMock) GetByLinkToken(ctx context.Context, linkToken string) (*domain.EmailToken, error) {
	args := m.Called(ctx, linkToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailToken), args.Error(1)
}

func (m *emailTokensMock) Activate(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *emailTokensMock) Reopen(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *emailTokensMock) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *emailTokensMock) MarkUsedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, tx, id, at).Error(0)
}

func (m *emailTokensMock) SetPhoneVerified(ctx context.Context, id uuid.UUID, phone string, at time.Time) error {
	return m.Called(ctx, id, phone, at).Error(0)
}

func (m *emailTokensMock) SetOAuthInProgress(ctx context.Context, id uuid.UUID, inProgress bool) error {
	return m.Called(ctx, id, inProgress).Error(0)
}

func (m *emailTokensMock) ExpireOpenByOwner(ctx context.Context, ownerID uuid.UUID) error {
	return m.Called(ctx, ownerID).Error(0)
}

func (m *emailTokensMock) ListNeverOpened(ctx context.Context, sentBefore time.Time) ([]domain.EmailToken, error) {
	args := m.Called(ctx, sentBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmailToken), args.Error(1)
}

func (m *emailTokensMock) ListStaleActivated(ctx context.Context, activatedBefore time.Time) ([]domain.EmailToken, error) {
	args := m.Called(ctx, activatedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmailToken), args.Error(1)
}

func (m *emailTokensMock) DeleteTerminalBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type deferralsMock struct{ mock.Mock }

func (m *deferralsMock) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Deferral, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deferral), args.Error(1)
}

func (m *deferralsMock) Create(ctx context.Context, deferral *domain.Deferral) error {
	return m.Called(ctx, deferral).Error(0)
}

func (m *deferralsMock) IncrementIfBelowCap(ctx context.Context, ownerID uuid.UUID, cap int) (bool, error) {
	args := m.Called(ctx, ownerID, cap)
	return args.Bool(0), args.Error(1)
}

func (m *deferralsMock) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	return m.Called(ctx, ownerID).Error(0)
}

func (m *deferralsMock) DeleteByOwnerTx(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID) error {
	return m.Called(ctx, tx, ownerID).Error(0)
}

func (m *deferralsMock) ListBelowCap(ctx context.Context, cap int) ([]domain.Deferral, error) {
	args := m.Called(ctx, cap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deferral), args.Error(1)
}

func (m *deferralsMock) ListAtCap(ctx context.Context, cap int) ([]domain.Deferral, error) {
	args := m.Called(ctx, cap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deferral), args.Error(1)
}

func (m *deferralsMock) DeleteWhereOwnerCompleted(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type submissionsMock struct{ mock.Mock }

func (m *submissionsMock) GetCompletedByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *submissionsMock) HasCompletedByOwner(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *submissionsMock) CreatePending(ctx context.Context, submission *domain.Submission) error {
	return m.Called(ctx, submission).Error(0)
}

func (m *submissionsMock) CreatePendingTx(ctx context.Context, tx *sqlx.Tx, submission *domain.Submission) error {
	return m.Called(ctx, tx, submission).Error(0)
}

func (m *submissionsMock) Promote(ctx context.Context, id uuid.UUID, externalUserID string) error {
	return m.Called(ctx, id, externalUserID).Error(0)
}

func (m *submissionsMock) PromoteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, externalUserID string) error {
	return m.Called(ctx, tx, id, externalUserID).Error(0)
}

func (m *submissionsMock) DeletePending(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type optOutsMock struct{ mock.Mock }

func (m *optOutsMock) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.OptOut, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OptOut), args.Error(1)
}

func (m *optOutsMock) Create(ctx context.Context, optOut *domain.OptOut) error {
	return m.Called(ctx, optOut).Error(0)
}

type draftsMock struct{ mock.Mock }

func (m *draftsMock) Upsert(ctx context.Context, draft *domain.Draft) error {
	return m.Called(ctx, draft).Error(0)
}

func (m *draftsMock) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Draft, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *draftsMock) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	return m.Called(ctx, ownerID).Error(0)
}

func (m *draftsMock) DeleteByOwnerTx(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID) error {
	return m.Called(ctx, tx, ownerID).Error(0)
}

type recipientsMock struct{ mock.Mock }

func (m *recipientsMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recipient), args.Error(1)
}

type emailLogMock struct{ mock.Mock }

func (m *emailLogMock) Create(ctx context.Context, entry *domain.EmailLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *emailLogMock) CountByOwner(ctx context.Context, ownerID uuid.UUID, emailType domain.EmailType) (int, error) {
	args := m.Called(ctx, ownerID, emailType)
	return args.Int(0), args.Error(1)
}

func (m *emailLogMock) ListRecent(ctx context.Context, limit int) ([]domain.EmailLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmailLogEntry), args.Error(1)
}

type directoryUsersMock struct{ mock.Mock }

func (m *directoryUsersMock) FindByEmail(ctx context.Context, email string) (*domain.DirectoryUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirectoryUser), args.Error(1)
}

func (m *directoryUsersMock) FindByPhone(ctx context.Context, phone string) (*domain.DirectoryUser, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirectoryUser), args.Error(1)
}

func (m *directoryUsersMock) FindByGithubURL(ctx context.Context, githubURL string) (*domain.DirectoryUser, error) {
	args := m.Called(ctx, githubURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirectoryUser), args.Error(1)
}

func (m *directoryUsersMock) CreateUser(ctx context.Context, user *domain.DirectoryUser) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

type organizationsMock struct{ mock.Mock }

func (m *organizationsMock) FindByID(ctx context.Context, id string) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

type verifierMock struct{ mock.Mock }

func (m *verifierMock) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Error(1)
}
