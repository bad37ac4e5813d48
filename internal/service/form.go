package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/directory"
	"github.com/badal-community/backend/internal/discord"
	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/internal/identity"
	"github.com/badal-community/backend/internal/repository"
	"github.com/badal-community/backend/pkg/logger"
	"github.com/badal-community/backend/pkg/phone"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validation reasons returned by Validate.
const (
	ReasonNotFound         = "not_found"
	ReasonAlreadyUsed      = "already_used"
	ReasonAlreadySubmitted = "already_submitted"
	ReasonExpired          = "expired"
)

type formService struct {
	repos       *repository.Repositories
	dir         *directory.Directory
	verifier    identity.Verifier
	discord     *discord.Client
	config      *config.Config
	txSupported bool
}

func newFormService(deps Deps) *formService {
	return &formService{
		repos:       deps.Repos,
		dir:         deps.Directory,
		verifier:    deps.Identity,
		discord:     deps.Discord,
		config:      deps.Config,
		txSupported: deps.TxSupported,
	}
}

// newLinkToken mints the opaque secret embedded into emailed links.
func newLinkToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes failed: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *formService) windows() (base, oauth, link time.Duration) {
	return s.config.Form.ActivationWindow, s.config.Form.OAuthWindow, s.config.Form.LinkWindow
}

func (s *formService) getToken(ctx context.Context, linkToken string) (*domain.EmailToken, error) {
	token, err := s.repos.EmailTokens.GetByLinkToken(ctx, linkToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("get token failed: %w", err)
	}

	return token, nil
}

// Activate opens the form behind linkToken. The first open stamps the
// activation time; later calls before submission return the original clock.
// A used token may be reopened within a narrow grace window when the owner
// has no completed submission, no deferral and no opt-out.
func (s *formService) Activate(ctx context.Context, linkToken string) (*Activation, error) {
	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	base, oauth, link := s.windows()

	if token.UsedAt == nil {
		if !token.Open() {
			return nil, s.closedTokenError(ctx, token)
		}

		if now.After(token.ExpiresAt(base, oauth, link)) {
			return nil, ErrLinkExpired
		}

		first, err := s.repos.EmailTokens.Activate(ctx, token.ID, now)
		if err != nil {
			return nil, fmt.Errorf("activate token failed: %w", err)
		}

		activatedAt := now
		if !first && token.ActivatedAt != nil {
			activatedAt = *token.ActivatedAt
		}

		return &Activation{
			ActivatedAt: activatedAt,
			ExpiresAt:   activatedAt.Add(token.ActivationWindow(base, oauth)),
		}, nil
	}

	// Reopen path: the accidental-close escape hatch.
	if err := s.reopenAllowed(ctx, token, now); err != nil {
		return nil, err
	}

	if err := s.repos.EmailTokens.Reopen(ctx, token.ID, now); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			// Someone else reopened it first; re-read and hand back its clock.
			token, err = s.getToken(ctx, linkToken)
			if err != nil {
				return nil, err
			}
			if !token.Open() || token.ActivatedAt == nil {
				return nil, ErrLinkClosed
			}
			return &Activation{
				ActivatedAt: *token.ActivatedAt,
				ExpiresAt:   token.ActivatedAt.Add(token.ActivationWindow(base, oauth)),
			}, nil
		}
		return nil, fmt.Errorf("reopen token failed: %w", err)
	}

	return &Activation{
		ActivatedAt: now,
		ExpiresAt:   now.Add(token.ActivationWindow(base, oauth)),
	}, nil
}

// closedTokenError classifies a token that was closed without being consumed:
// suppressed by an opt-out, or superseded by a newer link.
func (s *formService) closedTokenError(ctx context.Context, token *domain.EmailToken) error {
	if _, err := s.repos.OptOuts.GetByOwner(ctx, token.OwnerID); err == nil {
		return ErrUnsubscribed
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check opt-out failed: %w", err)
	}

	return ErrLinkClosed
}

func (s *formService) reopenAllowed(ctx context.Context, token *domain.EmailToken, now time.Time) error {
	completed, err := s.repos.Submissions.HasCompletedByOwner(ctx, token.OwnerID)
	if err != nil {
		return fmt.Errorf("check completed submission failed: %w", err)
	}
	if completed {
		return ErrAlreadySubmitted
	}

	if _, err := s.repos.OptOuts.GetByOwner(ctx, token.OwnerID); err == nil {
		return ErrUnsubscribed
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check opt-out failed: %w", err)
	}

	if _, err := s.repos.Deferrals.GetByOwner(ctx, token.OwnerID); err == nil {
		return ErrLinkDeferred
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check deferral failed: %w", err)
	}

	base, oauth, link := s.windows()
	if now.After(token.ExpiresAt(base, oauth, link)) {
		return ErrLinkExpired
	}

	return nil
}

// Validate answers whether the link is still actionable. It never mutates
// state.
func (s *formService) Validate(ctx context.Context, linkToken string) (*Validation, error) {
	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return &Validation{Valid: false, Reason: ReasonNotFound}, nil
		}
		return nil, err
	}

	if token.UsedAt != nil {
		return &Validation{Valid: false, Reason: ReasonAlreadyUsed}, nil
	}

	completed, err := s.repos.Submissions.HasCompletedByOwner(ctx, token.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("check completed submission failed: %w", err)
	}
	if completed {
		return &Validation{Valid: false, Reason: ReasonAlreadySubmitted}, nil
	}

	if !token.Open() {
		return &Validation{Valid: false, Reason: ReasonExpired}, nil
	}

	base, oauth, link := s.windows()
	if time.Now().After(token.ExpiresAt(base, oauth, link)) {
		return &Validation{Valid: false, Reason: ReasonExpired}, nil
	}

	return &Validation{Valid: true}, nil
}

// VerifyPhone checks the provider-asserted phone against the claimed one and
// stamps the token. It can run at any point while the token is open.
func (s *formService) VerifyPhone(ctx context.Context, linkToken, claimedPhone, providerToken string) error {
	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		return err
	}

	if !token.Open() {
		return ErrLinkClosed
	}

	base, oauth, link := s.windows()
	now := time.Now()
	if now.After(token.ExpiresAt(base, oauth, link)) {
		return ErrLinkExpired
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.config.Identity.Timeout)
	defer cancel()

	assertedPhone, err := s.verifier.VerifyIDToken(verifyCtx, providerToken)
	if err != nil {
		return ErrInvalidProviderToken
	}

	region := s.config.Form.PhoneRegion
	claimed, err := phone.Normalize(claimedPhone, region)
	if err != nil {
		return ErrPhoneUnparseable
	}
	asserted, err := phone.Normalize(assertedPhone, region)
	if err != nil {
		return ErrPhoneUnparseable
	}

	if claimed != asserted {
		return ErrPhoneMismatch
	}

	if err := s.repos.EmailTokens.SetPhoneVerified(ctx, token.ID, claimed, now); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return ErrLinkClosed
		}
		return fmt.Errorf("set phone verified failed: %w", err)
	}

	return nil
}

// Defer records a "remind me later": the current link is closed and a
// reminder cycle takes over, capped at the usual attempt limit.
func (s *formService) Defer(ctx context.Context, linkToken string) error {
	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		return err
	}

	if !token.Open() {
		return ErrLinkClosed
	}

	if _, err := s.repos.OptOuts.GetByOwner(ctx, token.OwnerID); err == nil {
		return ErrUnsubscribed
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check opt-out failed: %w", err)
	}

	if err := s.enrollDeferral(ctx, token.OwnerID); err != nil {
		return err
	}

	if err := s.repos.EmailTokens.MarkUsed(ctx, token.ID, time.Now()); err != nil && !errors.Is(err, domain.ErrNoRowsAffected) {
		return fmt.Errorf("mark token used failed: %w", err)
	}

	return nil
}

// enrollDeferral creates the owner's deferral at one attempt or bumps it if
// still below the cap. At the cap it is a no-op.
func (s *formService) enrollDeferral(ctx context.Context, ownerID uuid.UUID) error {
	_, err := s.repos.Deferrals.GetByOwner(ctx, ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		deferral := &domain.Deferral{
			OwnerID:    ownerID,
			Attempts:   1,
			DeferredAt: time.Now(),
		}
		if err := s.repos.Deferrals.Create(ctx, deferral); err != nil {
			return fmt.Errorf("create deferral failed: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get deferral failed: %w", err)
	}

	if _, err := s.repos.Deferrals.IncrementIfBelowCap(ctx, ownerID, domain.MaxDeferralAttempts); err != nil {
		return fmt.Errorf("increment deferral failed: %w", err)
	}

	return nil
}

// OptOut permanently suppresses the owner: no reopening, no reminders.
func (s *formService) OptOut(ctx context.Context, linkToken string, reason *string) error {
	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		return err
	}

	optOut := &domain.OptOut{
		OwnerID:   token.OwnerID,
		Reason:    reason,
		LinkToken: linkToken,
		OptedOut:  time.Now(),
	}
	if err := s.repos.OptOuts.Create(ctx, optOut); err != nil {
		return fmt.Errorf("create opt-out failed: %w", err)
	}

	if err := s.repos.Deferrals.DeleteByOwner(ctx, token.OwnerID); err != nil {
		return fmt.Errorf("delete deferral failed: %w", err)
	}

	if err := s.repos.EmailTokens.ExpireOpenByOwner(ctx, token.OwnerID); err != nil {
		return fmt.Errorf("expire open tokens failed: %w", err)
	}

	return nil
}

func (s *formService) SaveDraft(ctx context.Context, linkToken string, payload json.RawMessage) error {
	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		return err
	}

	if !token.Open() {
		return ErrLinkClosed
	}

	draft := &domain.Draft{
		OwnerID: token.OwnerID,
		Payload: payload,
		SavedAt: time.Now(),
	}
	if err := s.repos.Drafts.Upsert(ctx, draft); err != nil {
		return fmt.Errorf("upsert draft failed: %w", err)
	}

	return nil
}

func (s *formService) GetDraft(ctx context.Context, linkToken string) (*domain.Draft, error) {
	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		return nil, err
	}

	draft, err := s.repos.Drafts.GetByOwner(ctx, token.OwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("get draft failed: %w", err)
	}

	return draft, nil
}

func (s *formService) DeleteDraft(ctx context.Context, linkToken string) error {
	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		return err
	}

	if err := s.repos.Drafts.DeleteByOwner(ctx, token.OwnerID); err != nil {
		return fmt.Errorf("delete draft failed: %w", err)
	}

	return nil
}

// BeginOAuth flags the token so the stale-activation sweep leaves the user
// alone while they are away at Discord, and returns the consent URL.
func (s *formService) BeginOAuth(ctx context.Context, linkToken, state string) (string, error) {
	if !s.config.Discord.Enabled || s.discord == nil {
		return "", ErrOAuthDisabled
	}

	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		return "", err
	}

	if !token.Open() {
		return "", ErrLinkClosed
	}

	if err := s.repos.EmailTokens.SetOAuthInProgress(ctx, token.ID, true); err != nil {
		return "", fmt.Errorf("set oauth in progress failed: %w", err)
	}

	return s.discord.AuthorizationURL(state), nil
}

// CompleteOAuth finishes the Discord round-trip and reports guild
// membership. The in-progress flag is always cleared, even when the
// membership check fails.
func (s *formService) CompleteOAuth(ctx context.Context, linkToken, code string) (bool, error) {
	if !s.config.Discord.Enabled || s.discord == nil {
		return false, ErrOAuthDisabled
	}

	token, err := s.getToken(ctx, linkToken)
	if err != nil {
		return false, err
	}

	defer func() {
		_ = s.repos.EmailTokens.SetOAuthInProgress(ctx, token.ID, false)
	}()

	tokenResp, err := s.discord.ExchangeCodeForToken(ctx, code)
	if err != nil {
		return false, fmt.Errorf("exchange code failed: %w", err)
	}

	if user, err := s.discord.CurrentUser(ctx, tokenResp.AccessToken); err != nil {
		logger.Warn("discord account lookup failed",
			zap.String("owner_id", token.OwnerID.String()), zap.Error(err))
	} else {
		logger.Info("discord account linked",
			zap.String("owner_id", token.OwnerID.String()),
			zap.String("discord_user_id", user.ID),
			zap.String("discord_username", user.Username))
	}

	member, err := s.discord.IsGuildMember(ctx, tokenResp.AccessToken)
	if err != nil {
		return false, fmt.Errorf("guild membership check failed: %w", err)
	}

	return member, nil
}
