package service

import (
	"context"
	"testing"
	"time"

	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/internal/queue/task"
	"github.com/badal-community/backend/internal/repository"
	"github.com/badal-community/backend/pkg/auth"
	"github.com/badal-community/backend/pkg/hash"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	tokens      *emailTokensMock
	submissions *submissionsMock
	optOuts     *optOutsMock
	recipients  *recipientsMock
	emailLog    *emailLogMock
	queue       *enqueuerMock
	svc         *adminService
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	f := &adminFixture{
		tokens:      &emailTokensMock{},
		submissions: &submissionsMock{},
		optOuts:     &optOutsMock{},
		recipients:  &recipientsMock{},
		emailLog:    &emailLogMock{},
		queue:       &enqueuerMock{},
	}

	hasher := hash.NewSHA256Hasher("pepper")
	passwordHash, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Admin = config.AdminConfig{
		JWT: config.JWTConfig{
			AccessTokenTTL: time.Hour,
			SigningKey:     "test-signing-key",
		},
		PasswordSalt: "pepper",
		Email:        "ops@example.org",
		PasswordHash: passwordHash,
	}

	tokenManager, err := auth.NewManager(cfg.Admin.JWT)
	require.NoError(t, err)

	repos := &repository.Repositories{
		EmailTokens: f.tokens,
		Submissions: f.submissions,
		OptOuts:     f.optOuts,
		Recipients:  f.recipients,
		EmailLog:    f.emailLog,
	}

	f.svc = newAdminService(Deps{
		Config:       cfg,
		Repos:        repos,
		Hasher:       hasher,
		TokenManager: tokenManager,
		Queue:        f.queue,
	})

	return f
}

func TestAdminLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "ops@example.org", "correct horse battery", nil},
		{"wrong password", "ops@example.org", "guess", ErrInvalidCredentials},
		{"wrong email", "intruder@example.org", "correct horse battery", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture(t)

			token, ttl, err := f.svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, time.Hour, ttl)
		})
	}
}

func TestInviteRecipient_UnknownRecipient(t *testing.T) {
	f := newAdminFixture(t)
	recipientID := uuid.Must(uuid.NewV7())

	f.recipients.On("GetByID", mock.Anything, recipientID).Return(nil, domain.ErrNotFound)

	err := f.svc.InviteRecipient(context.Background(), recipientID)
	assert.ErrorIs(t, err, ErrRecipientNotFound)
}

func TestInviteRecipient_OptedOutRecipient(t *testing.T) {
	f := newAdminFixture(t)
	recipientID := uuid.Must(uuid.NewV7())

	f.recipients.On("GetByID", mock.Anything, recipientID).Return(&domain.Recipient{ID: recipientID, Email: "r@example.org"}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, recipientID).Return(&domain.OptOut{OwnerID: recipientID}, nil)

	err := f.svc.InviteRecipient(context.Background(), recipientID)
	assert.ErrorIs(t, err, ErrUnsubscribed)
	f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInviteRecipient_CompletedSubmissionBlocks(t *testing.T) {
	f := newAdminFixture(t)
	recipientID := uuid.Must(uuid.NewV7())

	f.recipients.On("GetByID", mock.Anything, recipientID).Return(&domain.Recipient{ID: recipientID, Email: "r@example.org"}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, recipientID).Return(nil, domain.ErrNotFound)
	f.submissions.On("HasCompletedByOwner", mock.Anything, recipientID).Return(true, nil)

	err := f.svc.InviteRecipient(context.Background(), recipientID)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestInviteRecipient_MintsTokenAndEnqueuesEmail(t *testing.T) {
	f := newAdminFixture(t)
	recipientID := uuid.Must(uuid.NewV7())

	f.recipients.On("GetByID", mock.Anything, recipientID).Return(&domain.Recipient{ID: recipientID, Email: "r@example.org"}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, recipientID).Return(nil, domain.ErrNotFound)
	f.submissions.On("HasCompletedByOwner", mock.Anything, recipientID).Return(false, nil)
	f.tokens.On("Create", mock.Anything, mock.MatchedBy(func(token *domain.EmailToken) bool {
		return token.OwnerID == recipientID &&
			token.EmailType == domain.EmailTypeInitial &&
			token.Status == domain.TokenStatusSent &&
			token.LinkToken != ""
	})).Return(nil)
	f.queue.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(enqueued *asynq.Task) bool {
		return enqueued.Type() == task.SendLinkEmailTaskName
	})).Return(&asynq.TaskInfo{}, nil)

	err := f.svc.InviteRecipient(context.Background(), recipientID)
	require.NoError(t, err)
	f.tokens.AssertExpectations(t)
	f.queue.AssertExpectations(t)
}

func TestInviteRecipient_OpenInviteConflict(t *testing.T) {
	f := newAdminFixture(t)
	recipientID := uuid.Must(uuid.NewV7())

	f.recipients.On("GetByID", mock.Anything, recipientID).Return(&domain.Recipient{ID: recipientID, Email: "r@example.org"}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, recipientID).Return(nil, domain.ErrNotFound)
	f.submissions.On("HasCompletedByOwner", mock.Anything, recipientID).Return(false, nil)
	f.tokens.On("Create", mock.Anything, mock.MatchedBy(func(token *domain.EmailToken) bool {
		return token.OwnerID == recipientID && token.EmailType == domain.EmailTypeInitial
	})).Return(domain.ErrDuplicateEntry)

	err := f.svc.InviteRecipient(context.Background(), recipientID)
	assert.ErrorIs(t, err, ErrInviteAlreadyOpen)
}

func TestEmailLog_PassesThrough(t *testing.T) {
	f := newAdminFixture(t)
	entries := []domain.EmailLogEntry{
		{ID: uuid.Must(uuid.NewV7()), Recipient: "r@example.org", EmailType: domain.EmailTypeReminder, Success: true},
	}

	f.emailLog.On("ListRecent", mock.Anything, 50).Return(entries, nil)

	got, err := f.svc.EmailLog(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
