package service

import (
	"context"
	"testing"
	"time"

	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/directory"
	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type formFixture struct {
	tokens      *emailTokensMock
	deferrals   *deferralsMock
	submissions *submissionsMock
	optOuts     *optOutsMock
	drafts      *draftsMock
	recipients  *recipientsMock
	emailLog    *emailLogMock
	users       *directoryUsersMock
	orgs        *organizationsMock
	defaultOrgs *organizationsMock
	verifier    *verifierMock
	svc         *formService
}

func testConfig() *config.Config {
	return &config.Config{
		Form: config.FormConfig{
			PublicURL:        "https://onboarding.example.org",
			ActivationWindow: 10 * time.Minute,
			OAuthWindow:      30 * time.Minute,
			LinkWindow:       24 * time.Hour,
			OtpFreshness:     time.Hour,
			PhoneRegion:      "IN",
			MaxReminders:     3,
			Retention:        90 * 24 * time.Hour,
		},
		Identity: config.IdentityConfig{
			Enabled: true,
			Timeout: 5 * time.Second,
		},
	}
}

func newFormFixture(t *testing.T) *formFixture {
	t.Helper()

	f := &formFixture{
		tokens:      &emailTokensMock{},
		deferrals:   &deferralsMock{},
		submissions: &submissionsMock{},
		optOuts:     &optOutsMock{},
		drafts:      &draftsMock{},
		recipients:  &recipientsMock{},
		emailLog:    &emailLogMock{},
		users:       &directoryUsersMock{},
		orgs:        &organizationsMock{},
		defaultOrgs: &organizationsMock{},
		verifier:    &verifierMock{},
	}

	repos := &repository.Repositories{
		EmailTokens: f.tokens,
		Deferrals:   f.deferrals,
		Submissions: f.submissions,
		OptOuts:     f.optOuts,
		Drafts:      f.drafts,
		EmailLog:    f.emailLog,
		Recipients:  f.recipients,
	}

	f.svc = newFormService(Deps{
		Config: testConfig(),
		Repos:  repos,
		Directory: &directory.Directory{
			Users:          f.users,
			RegisteredOrgs: f.orgs,
			DefaultOrgs:    f.defaultOrgs,
		},
		Identity: f.verifier,
	})

	return f
}

func openToken(ownerID uuid.UUID, sentAgo time.Duration) *domain.EmailToken {
	return &domain.EmailToken{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   ownerID,
		LinkToken: "tok-" + ownerID.String()[:8],
		EmailType: domain.EmailTypeInitial,
		Status:    domain.TokenStatusSent,
		SentAt:    time.Now().Add(-sentAgo),
	}
}

func TestActivate_FirstOpenStampsClock(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.tokens.On("Activate", mock.Anything, token.ID, mock.AnythingOfType("time.Time")).Return(true, nil)

	activation, err := f.svc.Activate(context.Background(), token.LinkToken)
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now(), activation.ActivatedAt, time.Second)
	assert.WithinDuration(t, activation.ActivatedAt.Add(10*time.Minute), activation.ExpiresAt, time.Second)
	f.tokens.AssertExpectations(t)
}

func TestActivate_SecondOpenReturnsOriginalClock(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)
	firstOpen := time.Now().Add(-3 * time.Minute)
	token.ActivatedAt = &firstOpen

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.tokens.On("Activate", mock.Anything, token.ID, mock.AnythingOfType("time.Time")).Return(false, nil)

	activation, err := f.svc.Activate(context.Background(), token.LinkToken)
	require.NoError(t, err)

	assert.Equal(t, firstOpen, activation.ActivatedAt)
}

func TestActivate_UnopenedLinkExpiresAfterLinkWindow(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, 25*time.Hour)

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)

	_, err := f.svc.Activate(context.Background(), token.LinkToken)
	assert.ErrorIs(t, err, ErrLinkExpired)
}

func TestActivate_UnknownToken(t *testing.T) {
	f := newFormFixture(t)

	f.tokens.On("GetByLinkToken", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	_, err := f.svc.Activate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestActivate_SupersededTokenStaysClosed(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)
	token.Status = domain.TokenStatusExpired

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)

	_, err := f.svc.Activate(context.Background(), token.LinkToken)
	assert.ErrorIs(t, err, ErrLinkClosed)
	f.tokens.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivate_OptedOutTokenStaysClosed(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)
	token.Status = domain.TokenStatusExpired

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(&domain.OptOut{OwnerID: ownerID}, nil)

	_, err := f.svc.Activate(context.Background(), token.LinkToken)
	assert.ErrorIs(t, err, ErrUnsubscribed)
	f.tokens.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivate_ReopenWithinGraceWindow(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)
	activated := time.Now().Add(-5 * time.Minute)
	used := time.Now().Add(-2 * time.Minute)
	token.ActivatedAt = &activated
	token.UsedAt = &used

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(false, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.deferrals.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.tokens.On("Reopen", mock.Anything, token.ID, mock.AnythingOfType("time.Time")).Return(nil)

	activation, err := f.svc.Activate(context.Background(), token.LinkToken)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), activation.ActivatedAt, time.Second)
}

func TestActivate_ReopenBlockedByCompletedSubmission(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)
	activated := time.Now().Add(-5 * time.Minute)
	used := time.Now().Add(-time.Minute)
	token.ActivatedAt = &activated
	token.UsedAt = &used

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(true, nil)

	_, err := f.svc.Activate(context.Background(), token.LinkToken)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestActivate_ReopenBlockedByDeferral(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)
	activated := time.Now().Add(-5 * time.Minute)
	used := time.Now().Add(-time.Minute)
	token.ActivatedAt = &activated
	token.UsedAt = &used

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(false, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.deferrals.On("GetByOwner", mock.Anything, ownerID).Return(&domain.Deferral{OwnerID: ownerID, Attempts: 1}, nil)

	_, err := f.svc.Activate(context.Background(), token.LinkToken)
	assert.ErrorIs(t, err, ErrLinkDeferred)
}

func TestActivate_ReopenRaceReturnsWinnersClock(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)
	activated := time.Now().Add(-5 * time.Minute)
	used := time.Now().Add(-2 * time.Minute)
	token.ActivatedAt = &activated
	token.UsedAt = &used

	winnersClock := time.Now().Add(-time.Minute)
	reopened := openToken(ownerID, time.Hour)
	reopened.ID = token.ID
	reopened.LinkToken = token.LinkToken
	reopened.ActivatedAt = &winnersClock

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil).Once()
	f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(false, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.deferrals.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.tokens.On("Reopen", mock.Anything, token.ID, mock.AnythingOfType("time.Time")).Return(domain.ErrNoRowsAffected)
	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(reopened, nil).Once()

	activation, err := f.svc.Activate(context.Background(), token.LinkToken)
	require.NoError(t, err)
	assert.Equal(t, winnersClock, activation.ActivatedAt)
	f.tokens.AssertExpectations(t)
}

func TestActivate_ReopenBlockedPastGraceWindow(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, 2*time.Hour)
	activated := time.Now().Add(-20 * time.Minute)
	used := time.Now().Add(-15 * time.Minute)
	token.ActivatedAt = &activated
	token.UsedAt = &used

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(false, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.deferrals.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)

	_, err := f.svc.Activate(context.Background(), token.LinkToken)
	assert.ErrorIs(t, err, ErrLinkExpired)
}

func TestValidate_Reasons(t *testing.T) {
	ownerID := uuid.Must(uuid.NewV7())
	usedAt := time.Now().Add(-time.Minute)
	staleActivation := time.Now().Add(-11 * time.Minute)

	tests := []struct {
		name   string
		setup  func(f *formFixture) string
		valid  bool
		reason string
	}{
		{
			name: "unknown token",
			setup: func(f *formFixture) string {
				f.tokens.On("GetByLinkToken", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
				return "missing"
			},
			reason: ReasonNotFound,
		},
		{
			name: "already used",
			setup: func(f *formFixture) string {
				token := openToken(ownerID, time.Hour)
				token.UsedAt = &usedAt
				f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
				return token.LinkToken
			},
			reason: ReasonAlreadyUsed,
		},
		{
			name: "completed submission",
			setup: func(f *formFixture) string {
				token := openToken(ownerID, time.Hour)
				f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
				f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(true, nil)
				return token.LinkToken
			},
			reason: ReasonAlreadySubmitted,
		},
		{
			name: "superseded by a newer link",
			setup: func(f *formFixture) string {
				token := openToken(ownerID, time.Hour)
				token.Status = domain.TokenStatusExpired
				f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
				f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(false, nil)
				return token.LinkToken
			},
			reason: ReasonExpired,
		},
		{
			name: "activation window elapsed",
			setup: func(f *formFixture) string {
				token := openToken(ownerID, time.Hour)
				token.ActivatedAt = &staleActivation
				f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
				f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(false, nil)
				return token.LinkToken
			},
			reason: ReasonExpired,
		},
		{
			name: "still open",
			setup: func(f *formFixture) string {
				token := openToken(ownerID, time.Hour)
				f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
				f.submissions.On("HasCompletedByOwner", mock.Anything, ownerID).Return(false, nil)
				return token.LinkToken
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFormFixture(t)
			linkToken := tt.setup(f)

			validation, err := f.svc.Validate(context.Background(), linkToken)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, validation.Valid)
			assert.Equal(t, tt.reason, validation.Reason)
		})
	}
}

func TestVerifyPhone_MatchStampsToken(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.verifier.On("VerifyIDToken", mock.Anything, "provider-token").Return("+14155552671", nil)
	f.tokens.On("SetPhoneVerified", mock.Anything, token.ID, "+14155552671", mock.AnythingOfType("time.Time")).Return(nil)

	err := f.svc.VerifyPhone(context.Background(), token.LinkToken, "+1 415 555 2671", "provider-token")
	require.NoError(t, err)
	f.tokens.AssertExpectations(t)
}

func TestVerifyPhone_Mismatch(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.verifier.On("VerifyIDToken", mock.Anything, "provider-token").Return("+14155552671", nil)

	err := f.svc.VerifyPhone(context.Background(), token.LinkToken, "+919876543210", "provider-token")
	assert.ErrorIs(t, err, ErrPhoneMismatch)
}

func TestVerifyPhone_ClosedToken(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)
	used := time.Now()
	token.UsedAt = &used

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)

	err := f.svc.VerifyPhone(context.Background(), token.LinkToken, "+14155552671", "provider-token")
	assert.ErrorIs(t, err, ErrLinkClosed)
}

func TestDefer_CreatesDeferralAndClosesToken(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.deferrals.On("GetByOwner", mock.Anything, ownerID).Return(nil, domain.ErrNotFound)
	f.deferrals.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Deferral) bool {
		return d.OwnerID == ownerID && d.Attempts == 1
	})).Return(nil)
	f.tokens.On("MarkUsed", mock.Anything, token.ID, mock.AnythingOfType("time.Time")).Return(nil)

	err := f.svc.Defer(context.Background(), token.LinkToken)
	require.NoError(t, err)
	f.deferrals.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
}

func TestDefer_BlockedByOptOut(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.optOuts.On("GetByOwner", mock.Anything, ownerID).Return(&domain.OptOut{OwnerID: ownerID}, nil)

	err := f.svc.Defer(context.Background(), token.LinkToken)
	assert.ErrorIs(t, err, ErrUnsubscribed)
}

func TestOptOut_SuppressesOwner(t *testing.T) {
	f := newFormFixture(t)
	ownerID := uuid.Must(uuid.NewV7())
	token := openToken(ownerID, time.Hour)
	reason := "not interested"

	f.tokens.On("GetByLinkToken", mock.Anything, token.LinkToken).Return(token, nil)
	f.optOuts.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.OptOut) bool {
		return o.OwnerID == ownerID && o.Reason != nil && *o.Reason == reason
	})).Return(nil)
	f.deferrals.On("DeleteByOwner", mock.Anything, ownerID).Return(nil)
	f.tokens.On("ExpireOpenByOwner", mock.Anything, ownerID).Return(nil)

	err := f.svc.OptOut(context.Background(), token.LinkToken, &reason)
	require.NoError(t, err)
	f.optOuts.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
}
