package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/internal/queue/client"
	"github.com/badal-community/backend/internal/queue/task"
	"github.com/badal-community/backend/internal/repository"
	"github.com/badal-community/backend/pkg/auth"
	"github.com/badal-community/backend/pkg/hash"

	"github.com/google/uuid"
)

type adminService struct {
	repos        *repository.Repositories
	config       *config.Config
	hasher       hash.PasswordHasher
	tokenManager auth.TokenManager
	queue        Enqueuer
}

func newAdminService(deps Deps) *adminService {
	return &adminService{
		repos:        deps.Repos,
		config:       deps.Config,
		hasher:       deps.Hasher,
		tokenManager: deps.TokenManager,
		queue:        deps.Queue,
	}
}

func (s *adminService) enqueuer(ctx context.Context) Enqueuer {
	if s.queue != nil {
		return s.queue
	}
	return client.GetClient(ctx)
}

// Login checks the single configured operator account and issues a JWT.
func (s *adminService) Login(ctx context.Context, email, password string) (string, time.Duration, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return "", 0, fmt.Errorf("hash password failed: %w", err)
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.config.Admin.Email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(passwordHash), []byte(s.config.Admin.PasswordHash)) == 1
	if !emailOK || !passwordOK {
		return "", 0, ErrInvalidCredentials
	}

	adminID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(s.config.Admin.Email))
	token, ttl, err := s.tokenManager.NewJWT(&adminID)
	if err != nil {
		return "", 0, fmt.Errorf("issue jwt failed: %w", err)
	}

	return token, ttl, nil
}

// InviteRecipient mints the initial form link for a recipient and enqueues
// the invitation email. The storage-level one-open-token-per-owner
// constraint rejects a second invite while one is still open.
func (s *adminService) InviteRecipient(ctx context.Context, recipientID uuid.UUID) error {
	recipient, err := s.repos.Recipients.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrRecipientNotFound
		}
		return fmt.Errorf("get recipient failed: %w", err)
	}

	if _, err := s.repos.OptOuts.GetByOwner(ctx, recipientID); err == nil {
		return ErrUnsubscribed
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check opt-out failed: %w", err)
	}

	completed, err := s.repos.Submissions.HasCompletedByOwner(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("check completed submission failed: %w", err)
	}
	if completed {
		return ErrAlreadySubmitted
	}

	linkToken, err := newLinkToken()
	if err != nil {
		return err
	}

	token := &domain.EmailToken{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   recipientID,
		LinkToken: linkToken,
		EmailType: domain.EmailTypeInitial,
		Status:    domain.TokenStatusSent,
		SentAt:    time.Now(),
	}
	if err := s.repos.EmailTokens.Create(ctx, token); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return ErrInviteAlreadyOpen
		}
		return fmt.Errorf("create email token failed: %w", err)
	}

	emailTask, err := task.NewSendLinkEmailTask(
		recipientID.String(), recipient.Email, linkToken, string(domain.EmailTypeInitial))
	if err != nil {
		return fmt.Errorf("build email task failed: %w", err)
	}
	if _, err := s.enqueuer(ctx).EnqueueContext(ctx, emailTask); err != nil {
		return fmt.Errorf("enqueue email task failed: %w", err)
	}

	return nil
}

func (s *adminService) EmailLog(ctx context.Context, limit int) ([]domain.EmailLogEntry, error) {
	entries, err := s.repos.EmailLog.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list email log failed: %w", err)
	}

	return entries, nil
}
