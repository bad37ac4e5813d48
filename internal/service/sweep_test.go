package service

import (
	"context"
	"testing"
	"time"

	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/internal/queue/task"
	"github.com/badal-community/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sweepFixture struct {
	tokens      *emailTokensMock
	deferrals   *deferralsMock
	submissions *submissionsMock
	optOuts     *optOutsMock
	recipients  *recipientsMock
	emailLog    *emailLogMock
	queue       *enqueuerMock
	svc         *sweepService
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	f := &sweepFixture{
		tokens:      &emailTokensMock{},
		deferrals:   &deferralsMock{},
		submissions: &submissionsMock{},
		optOuts:     &optOutsMock{},
		recipients:  &recipientsMock{},
		emailLog:    &emailLogMock{},
		queue:       &enqueuerMock{},
	}

	repos := &repository.Repositories{
		EmailTokens: f.tokens,
		Deferrals:   f.deferrals,
		Submissions: f.submissions,
		OptOuts:     f.optOuts,
		Recipients:  f.recipients,
		EmailLog:    f.emailLog,
	}

	f.svc = newSweepService(Deps{
		Config: testConfig(),
		Repos:  repos,
		Queue:  f.queue,
	})

	return f
}

func TestRunNeverOpened_OptedOutOwnerAbsorbed(t *testing.T) {
	f := newSweepFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := *openToken(ownerID, 25*time.Hour)

	f.tokens.On("ListNeverOpened", mock.Anything, mock.AnythingOfType("time.Time")).Return([]domain.EmailToken{token}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(&domain.OptOut{OwnerID: ownerID}, nil)
	f.tokens.On("MarkUsed", mock.Anything, token.ID, mock.AnythingOfType("time.Time")).Return(nil)

	stats, err := f.svc.RunNeverOpened(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Absorbed)
	assert.Equal(t, 0, stats.Deferred)
	f.deferrals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunNeverOpened_CappedOwnerAbsorbed(t *testing.T) {
	f := newSweepFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := *openToken(ownerID, 25*time.Hour)

	f.tokens.On("ListNeverOpened", mock.Anything, mock.AnythingOfType("time.Time")).Return([]domain.EmailToken{token}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.emailLog.On("CountByOwner", mock.Anything, ownerID, domain.EmailTypeReminder).Return(3, nil)
	f.tokens.On("MarkUsed", mock.Anything, token.ID, mock.AnythingOfType("time.Time")).Return(nil)

	stats, err := f.svc.RunNeverOpened(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Absorbed)
	f.deferrals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunNeverOpened_EnrollsDeferralAndSendsReminder(t *testing.T) {
	f := newSweepFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := *openToken(ownerID, 25*time.Hour)

	f.tokens.On("ListNeverOpened", mock.Anything, mock.AnythingOfType("time.Time")).Return([]domain.EmailToken{token}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.emailLog.On("CountByOwner", mock.Anything, ownerID, domain.EmailTypeReminder).Return(0, nil)
	f.deferrals.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.deferrals.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Deferral) bool {
		return d.OwnerID == ownerID && d.Attempts == 1
	})).Return(nil)
	f.tokens.On("MarkUsed", mock.Anything, token.ID, mock.AnythingOfType("time.Time")).Return(nil)

	f.recipients.On("GetByID", mock.Anything, ownerID).Return(&domain.Recipient{ID: ownerID, Email: "r@example.org"}, nil)
	f.tokens.On("ExpireOpenByOwner", mock.Anything, ownerID).Return(nil)
	f.tokens.On("Create", mock.Anything, mock.MatchedBy(func(created *domain.EmailToken) bool {
		return created.OwnerID == ownerID &&
			created.EmailType == domain.EmailTypeReminder &&
			created.Status == domain.TokenStatusSent &&
			created.LinkToken != "" &&
			created.LinkToken != token.LinkToken
	})).Return(nil)
	f.queue.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(enqueued *asynq.Task) bool {
		return enqueued.Type() == task.SendLinkEmailTaskName
	})).Return(&asynq.TaskInfo{}, nil)

	stats, err := f.svc.RunNeverOpened(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Deferred)
	assert.Equal(t, 0, stats.Absorbed)
	f.tokens.AssertExpectations(t)
	f.queue.AssertExpectations(t)
}

func TestRunStaleActivation_CreatesDeferralAndLeavesTokenOpen(t *testing.T) {
	f := newSweepFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := *openToken(ownerID, 2*time.Hour)
	activated := time.Now().Add(-30 * time.Minute)
	token.ActivatedAt = &activated

	f.tokens.On("ListStaleActivated", mock.Anything, mock.AnythingOfType("time.Time")).Return([]domain.EmailToken{token}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.emailLog.On("CountByOwner", mock.Anything, ownerID, domain.EmailTypeReminder).Return(0, nil)
	f.deferrals.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.deferrals.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Deferral) bool {
		return d.OwnerID == ownerID && d.Attempts == 1
	})).Return(nil)

	stats, err := f.svc.RunStaleActivation(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Deferred)
	f.tokens.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunStaleActivation_RepeatRunIsIdempotent(t *testing.T) {
	f := newSweepFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := *openToken(ownerID, 2*time.Hour)
	activated := time.Now().Add(-30 * time.Minute)
	token.ActivatedAt = &activated

	// The deferral was already refreshed after this activation.
	f.tokens.On("ListStaleActivated", mock.Anything, mock.AnythingOfType("time.Time")).Return([]domain.EmailToken{token}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.emailLog.On("CountByOwner", mock.Anything, ownerID, domain.EmailTypeReminder).Return(1, nil)
	f.deferrals.On("GetByOwner", mock.Anything, ownerID).Return(&domain.Deferral{
		OwnerID:    ownerID,
		Attempts:   1,
		DeferredAt: time.Now().Add(-10 * time.Minute),
	}, nil)

	stats, err := f.svc.RunStaleActivation(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	f.deferrals.AssertNotCalled(t, "IncrementIfBelowCap", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunStaleActivation_AtCapAbsorbs(t *testing.T) {
	f := newSweepFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := *openToken(ownerID, 2*time.Hour)
	activated := time.Now().Add(-30 * time.Minute)
	token.ActivatedAt = &activated

	f.tokens.On("ListStaleActivated", mock.Anything, mock.AnythingOfType("time.Time")).Return([]domain.EmailToken{token}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.emailLog.On("CountByOwner", mock.Anything, ownerID, domain.EmailTypeReminder).Return(0, nil)
	f.deferrals.On("GetByOwner", mock.Anything, ownerID).Return(&domain.Deferral{
		OwnerID:    ownerID,
		Attempts:   3,
		DeferredAt: time.Now().Add(-49 * time.Hour),
	}, nil)
	f.tokens.On("MarkUsed", mock.Anything, token.ID, mock.AnythingOfType("time.Time")).Return(nil)

	stats, err := f.svc.RunStaleActivation(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Absorbed)
	f.deferrals.AssertNotCalled(t, "IncrementIfBelowCap", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDeferredResend_SkipsAndDeletesForTerminalOwners(t *testing.T) {
	missingOwner := uuid.Must(uuid.NewV7())
	optedOutOwner := uuid.Must(uuid.NewV7())
	completedOwner := uuid.Must(uuid.NewV7())

	f := newSweepFixture(t)

	deferrals := []domain.Deferral{
		{OwnerID: missingOwner, Attempts: 1, DeferredAt: time.Now().Add(-49 * time.Hour)},
		{OwnerID: optedOutOwner, Attempts: 2, DeferredAt: time.Now().Add(-49 * time.Hour)},
		{OwnerID: completedOwner, Attempts: 1, DeferredAt: time.Now().Add(-49 * time.Hour)},
	}
	f.deferrals.On("ListBelowCap", mock.Anything, 3).Return(deferrals, nil)

	f.recipients.On("GetByID", mock.Anything, missingOwner).Return(nil, domain.ErrNotFound)

	f.recipients.On("GetByID", mock.Anything, optedOutOwner).Return(&domain.Recipient{ID: optedOutOwner, Email: "a@example.org"}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, optedOutOwner).Return(&domain.OptOut{OwnerID: optedOutOwner}, nil)

	f.recipients.On("GetByID", mock.Anything, completedOwner).Return(&domain.Recipient{ID: completedOwner, Email: "b@example.org"}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, completedOwner).Return(nil, domain.ErrNotFound)
	f.submissions.On("HasCompletedByOwner", mock.Anything, completedOwner).Return(true, nil)

	for _, ownerID := range []uuid.UUID{missingOwner, optedOutOwner, completedOwner} {
		f.deferrals.On("DeleteByOwner", mock.Anything, ownerID).Return(nil)
	}

	f.deferrals.On("DeleteWhereOwnerCompleted", mock.Anything).Return(int64(0), nil)
	f.deferrals.On("ListAtCap", mock.Anything, 3).Return(nil, nil)

	stats, err := f.svc.RunDeferredResend(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, 0, stats.Resent)
	f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunDeferredResend_SendsNextReminderAndBumpsAttempts(t *testing.T) {
	f := newSweepFixture(t)
	ownerID := uuid.Must(uuid.NewV7())

	f.deferrals.On("ListBelowCap", mock.Anything, 3).Return([]domain.Deferral{
		{OwnerID: ownerID, Attempts: 1, DeferredAt: time.Now().Add(-49 * time.Hour)},
	}, nil)
	f.recipients.On("GetByID", mock.Anything, ownerID).Return(&domain.Recipient{ID: ownerID, Email: "d@example.org"}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(false, nil)
	f.emailLog.On("CountByOwner", mock.Anything, ownerID, domain.EmailTypeReminder).Return(1, nil)

	f.tokens.On("ExpireOpenByOwner", mock.Anything, ownerID).Return(nil)
	f.tokens.On("Create", mock.Anything, mock.MatchedBy(func(created *domain.EmailToken) bool {
		return created.OwnerID == ownerID &&
			created.EmailType == domain.EmailTypeReminder &&
			created.Status == domain.TokenStatusSent &&
			created.LinkToken != ""
	})).Return(nil)
	f.queue.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(enqueued *asynq.Task) bool {
		return enqueued.Type() == task.SendLinkEmailTaskName
	})).Return(&asynq.TaskInfo{}, nil)
	f.deferrals.On("IncrementIfBelowCap", mock.Anything, ownerID, 3).Return(true, nil)

	f.deferrals.On("DeleteWhereOwnerCompleted", mock.Anything).Return(int64(0), nil)
	f.deferrals.On("ListAtCap", mock.Anything, 3).Return(nil, nil)

	stats, err := f.svc.RunDeferredResend(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Resent)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)
	f.tokens.AssertExpectations(t)
	f.queue.AssertExpectations(t)
	f.deferrals.AssertExpectations(t)
}

func TestRunDeferredResend_CappedByEmailLogClosesOpenTokens(t *testing.T) {
	f := newSweepFixture(t)
	ownerID := uuid.Must(uuid.NewV7())

	f.deferrals.On("ListBelowCap", mock.Anything, 3).Return([]domain.Deferral{
		{OwnerID: ownerID, Attempts: 1, DeferredAt: time.Now().Add(-49 * time.Hour)},
	}, nil)
	f.recipients.On("GetByID", mock.Anything, ownerID).Return(&domain.Recipient{ID: ownerID, Email: "c@example.org"}, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(false, nil)
	f.emailLog.On("CountByOwner", mock.Anything, ownerID, domain.EmailTypeReminder).Return(3, nil)
	f.tokens.On("ExpireOpenByOwner", mock.Anything, ownerID).Return(nil)
	f.deferrals.On("DeleteByOwner", mock.Anything, ownerID).Return(nil)
	f.deferrals.On("DeleteWhereOwnerCompleted", mock.Anything).Return(int64(0), nil)
	f.deferrals.On("ListAtCap", mock.Anything, 3).Return(nil, nil)

	stats, err := f.svc.RunDeferredResend(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	f.tokens.AssertCalled(t, "ExpireOpenByOwner", mock.Anything, ownerID)
	f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunDeferredResend_CleanupDeletesCappedDeferrals(t *testing.T) {
	f := newSweepFixture(t)
	cappedOwner := uuid.Must(uuid.NewV7())

	f.deferrals.On("ListBelowCap", mock.Anything, 3).Return(nil, nil)
	f.deferrals.On("DeleteWhereOwnerCompleted", mock.Anything).Return(int64(2), nil)
	f.deferrals.On("ListAtCap", mock.Anything, 3).Return([]domain.Deferral{
		{OwnerID: cappedOwner, Attempts: 3},
	}, nil)
	f.tokens.On("ExpireOpenByOwner", mock.Anything, cappedOwner).Return(nil)
	f.deferrals.On("DeleteByOwner", mock.Anything, cappedOwner).Return(nil)

	stats, err := f.svc.RunDeferredResend(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Skipped)
	f.deferrals.AssertExpectations(t)
}

func TestRunRetention_DeletesTerminalTokens(t *testing.T) {
	f := newSweepFixture(t)

	f.tokens.On("DeleteTerminalBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) > 89*24*time.Hour
	})).Return(int64(7), nil)

	deleted, err := f.svc.RunRetention(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
}
