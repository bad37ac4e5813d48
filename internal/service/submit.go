package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badal-community/backend/internal/directory"
	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/pkg/logger"
	"github.com/badal-community/backend/pkg/metrics"
	"github.com/badal-community/backend/pkg/phone"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// providerTokenPrefix is the structural prefix of a provider JWT (base64 of
// `{"`). Anything else is rejected before touching the verifier.
const providerTokenPrefix = "eyJ"

// Submit finalizes a form behind an open token. The write sequence is a
// pending submission, a mirror write into the user directory, then a
// promotion to completed; it runs in a transaction when the store supports
// one and falls back to compensating deletes when it does not.
func (s *formService) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if !strings.HasPrefix(input.ProviderToken, providerTokenPrefix) {
		return nil, ErrInvalidProviderToken
	}

	token, err := s.getToken(ctx, input.LinkToken)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	base, oauth, link := s.windows()

	if token.UsedAt != nil {
		return nil, ErrLinkClosed
	}
	if !token.Open() {
		return nil, s.closedTokenError(ctx, token)
	}
	if now.After(token.ExpiresAt(base, oauth, link)) {
		return nil, ErrLinkExpired
	}

	// Only a completed submission blocks; a stale pending row from an
	// earlier failed attempt must not.
	completed, err := s.repos.Submissions.HasCompletedByOwner(ctx, token.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("check completed submission failed: %w", err)
	}
	if completed {
		return nil, ErrAlreadySubmitted
	}

	normalizedPhone, err := phone.Normalize(input.Phone, s.config.Form.PhoneRegion)
	if err != nil {
		return nil, ErrPhoneUnparseable
	}

	if token.PhoneVerifiedAt == nil || token.VerifiedPhone == nil {
		return nil, ErrPhoneNotVerified
	}
	if now.Sub(*token.PhoneVerifiedAt) > s.config.Form.OtpFreshness {
		return nil, ErrOtpExpired
	}
	if normalizedPhone != *token.VerifiedPhone {
		return nil, ErrPhoneNotVerified
	}

	orgName, orgType, orgRefID, err := s.resolveOrg(ctx, input.OrgRef, input.Source)
	if err != nil {
		return nil, err
	}

	techStack := dedupeTechStack(input.TechStack)

	if err := s.checkDirectoryDuplicates(ctx, input.Email, normalizedPhone, input.GithubURL); err != nil {
		return nil, err
	}

	submission := &domain.Submission{
		ID:          uuid.Must(uuid.NewV7()),
		OwnerID:     token.OwnerID,
		Status:      domain.SubmissionStatusPending,
		FullName:    input.FullName,
		Email:       input.Email,
		Phone:       normalizedPhone,
		GithubURL:   input.GithubURL,
		OrgName:     orgName,
		OrgType:     orgType,
		OrgRefID:    orgRefID,
		City:        input.City,
		TechStack:   techStack,
		SubmittedAt: now,
	}

	mirror := &domain.DirectoryUser{
		FullName:  input.FullName,
		Email:     input.Email,
		Phone:     normalizedPhone,
		GithubURL: input.GithubURL,
		OrgName:   orgName,
		OrgType:   orgType,
		City:      input.City,
		TechStack: techStack,
	}

	var externalID string
	if s.txSupported {
		externalID, err = s.submitInTx(ctx, token, submission, mirror, now)
	} else {
		externalID, err = s.submitSequential(ctx, token, submission, mirror, now)
	}
	if err != nil {
		return nil, err
	}

	return &SubmitResult{ExternalUserID: externalID}, nil
}

// submitInTx runs the primary-store writes in one transaction. The directory
// mirror write lives in a different store and stays outside it; a mirror
// failure rolls the transaction back before anything is visible.
func (s *formService) submitInTx(ctx context.Context, token *domain.EmailToken, submission *domain.Submission, mirror *domain.DirectoryUser, now time.Time) (string, error) {
	tx, err := s.repos.BeginTxx(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx failed: %w", err)
	}

	if err := s.repos.Submissions.CreatePendingTx(ctx, tx, submission); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("create pending submission failed: %w", err)
	}

	externalID, err := s.dir.Users.CreateUser(ctx, mirror)
	if err != nil {
		_ = tx.Rollback()
		return "", mapDirectoryError(err)
	}

	if err := s.repos.Submissions.PromoteTx(ctx, tx, submission.ID, externalID); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("promote submission failed: %w", err)
	}
	if err := s.repos.EmailTokens.MarkUsedTx(ctx, tx, token.ID, now); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("mark token used failed: %w", err)
	}
	if err := s.repos.Deferrals.DeleteByOwnerTx(ctx, tx, token.OwnerID); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("delete deferral failed: %w", err)
	}
	if err := s.repos.Drafts.DeleteByOwnerTx(ctx, tx, token.OwnerID); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("delete draft failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit failed: %w", err)
	}

	return externalID, nil
}

// submitSequential is the no-transaction path: a failed mirror write deletes
// the pending submission so a retry starts clean. A pending row that slips
// through a crash is invisible to users and tolerated by the retry path.
func (s *formService) submitSequential(ctx context.Context, token *domain.EmailToken, submission *domain.Submission, mirror *domain.DirectoryUser, now time.Time) (string, error) {
	metrics.SubmissionFallbacks.Inc()

	if err := s.repos.Submissions.CreatePending(ctx, submission); err != nil {
		return "", fmt.Errorf("create pending submission failed: %w", err)
	}

	externalID, err := s.dir.Users.CreateUser(ctx, mirror)
	if err != nil {
		if delErr := s.repos.Submissions.DeletePending(ctx, submission.ID); delErr != nil {
			logger.Error("compensating delete of pending submission failed",
				zap.String("submission_id", submission.ID.String()), zap.Error(delErr))
		}
		return "", mapDirectoryError(err)
	}

	if err := s.repos.Submissions.Promote(ctx, submission.ID, externalID); err != nil {
		return "", fmt.Errorf("promote submission failed: %w", err)
	}
	if err := s.repos.EmailTokens.MarkUsed(ctx, token.ID, now); err != nil && !errors.Is(err, domain.ErrNoRowsAffected) {
		return "", fmt.Errorf("mark token used failed: %w", err)
	}
	if err := s.repos.Deferrals.DeleteByOwner(ctx, token.OwnerID); err != nil {
		logger.Error("delete deferral after submit failed",
			zap.String("owner_id", token.OwnerID.String()), zap.Error(err))
	}
	if err := s.repos.Drafts.DeleteByOwner(ctx, token.OwnerID); err != nil {
		logger.Error("delete draft after submit failed",
			zap.String("owner_id", token.OwnerID.String()), zap.Error(err))
	}

	return externalID, nil
}

func mapDirectoryError(err error) error {
	var dup *directory.DuplicateUserError
	if errors.As(err, &dup) {
		return &DuplicateUserError{ExistingID: dup.ExistingID}
	}
	return fmt.Errorf("directory mirror write failed: %w", err)
}

// resolveOrg turns the caller's typed organization reference into the
// authoritative name/type pair. Directory-backed references take their
// classification from the record, never from the caller.
func (s *formService) resolveOrg(ctx context.Context, ref OrgReference, source string) (name, orgType string, refID *string, err error) {
	if !ref.Type.Valid() {
		return "", "", nil, ErrInvalidOrgReference
	}
	if source != "" && source != string(ref.Type) {
		return "", "", nil, ErrSourceMismatch
	}

	switch ref.Type {
	case domain.OrgRefRegistered, domain.OrgRefDefault:
		collection := s.dir.RegisteredOrgs
		if ref.Type == domain.OrgRefDefault {
			collection = s.dir.DefaultOrgs
		}

		org, err := collection.FindByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "", "", nil, ErrOrgNotFound
			}
			return "", "", nil, fmt.Errorf("resolve organization failed: %w", err)
		}

		id := org.ID
		return org.Name, org.OrgType, &id, nil
	default:
		return ref.Name, string(domain.OrgRefCustom), nil, nil
	}
}

// dedupeTechStack trims entries and drops repeats, keeping first-seen order.
func dedupeTechStack(entries []string) domain.TechStack {
	if len(entries) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(entries))
	out := make(domain.TechStack, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}

	return out
}

func (s *formService) checkDirectoryDuplicates(ctx context.Context, email, normalizedPhone string, githubURL *string) error {
	checks := []func(context.Context) (*domain.DirectoryUser, error){
		func(ctx context.Context) (*domain.DirectoryUser, error) {
			return s.dir.Users.FindByEmail(ctx, email)
		},
		func(ctx context.Context) (*domain.DirectoryUser, error) {
			return s.dir.Users.FindByPhone(ctx, normalizedPhone)
		},
	}
	if githubURL != nil && *githubURL != "" {
		checks = append(checks, func(ctx context.Context) (*domain.DirectoryUser, error) {
			return s.dir.Users.FindByGithubURL(ctx, *githubURL)
		})
	}

	for _, check := range checks {
		existing, err := check(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return fmt.Errorf("directory duplicate check failed: %w", err)
		}
		return &DuplicateUserError{ExistingID: existing.ID}
	}

	return nil
}
