package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/internal/queue/client"
	"github.com/badal-community/backend/internal/queue/task"
	"github.com/badal-community/backend/internal/repository"
	"github.com/badal-community/backend/pkg/logger"
	"github.com/badal-community/backend/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sweepService struct {
	repos  *repository.Repositories
	config *config.Config
	queue  Enqueuer
}

func newSweepService(deps Deps) *sweepService {
	return &sweepService{
		repos:  deps.Repos,
		config: deps.Config,
		queue:  deps.Queue,
	}
}

func (s *sweepService) enqueuer(ctx context.Context) Enqueuer {
	if s.queue != nil {
		return s.queue
	}
	return client.GetClient(ctx)
}

func (s *sweepService) reminderCap() int {
	if s.config.Form.MaxReminders > 0 {
		return s.config.Form.MaxReminders
	}
	return domain.MaxDeferralAttempts
}

// atReminderCap counts actual reminder sends from the email log. Counting
// from history rather than the deferral record keeps the cap authoritative
// even if the deferral row was reset.
func (s *sweepService) atReminderCap(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	count, err := s.repos.EmailLog.CountByOwner(ctx, ownerID, domain.EmailTypeReminder)
	if err != nil {
		return false, fmt.Errorf("count reminder sends failed: %w", err)
	}
	return count >= s.reminderCap(), nil
}

func (s *sweepService) ownerOptedOut(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	_, err := s.repos.OptOuts.GetByOwner(ctx, ownerID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("check opt-out failed: %w", err)
}

// mintReminder closes any still-open token for the owner, mints a fresh
// reminder token and enqueues the email. The new link supersedes the old
// one so the one-open-token-per-owner constraint holds.
func (s *sweepService) mintReminder(ctx context.Context, ownerID uuid.UUID) error {
	recipient, err := s.repos.Recipients.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrRecipientNotFound
		}
		return fmt.Errorf("get recipient failed: %w", err)
	}

	if err := s.repos.EmailTokens.ExpireOpenByOwner(ctx, ownerID); err != nil {
		return fmt.Errorf("expire open tokens failed: %w", err)
	}

	linkToken, err := newLinkToken()
	if err != nil {
		return err
	}

	token := &domain.EmailToken{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   ownerID,
		LinkToken: linkToken,
		EmailType: domain.EmailTypeReminder,
		Status:    domain.TokenStatusSent,
		SentAt:    time.Now(),
	}
	if err := s.repos.EmailTokens.Create(ctx, token); err != nil {
		return fmt.Errorf("create reminder token failed: %w", err)
	}

	emailTask, err := task.NewSendLinkEmailTask(
		ownerID.String(), recipient.Email, linkToken, string(domain.EmailTypeReminder))
	if err != nil {
		return fmt.Errorf("build email task failed: %w", err)
	}
	if _, err := s.enqueuer(ctx).EnqueueContext(ctx, emailTask); err != nil {
		return fmt.Errorf("enqueue email task failed: %w", err)
	}

	return nil
}

// RunNeverOpened handles links that sat unopened past the link window.
// Opted-out and capped owners are absorbed quietly; everyone else is
// enrolled in the reminder cycle and gets a fresh link straight away.
func (s *sweepService) RunNeverOpened(ctx context.Context) (*SweepStats, error) {
	const sweep = "never_opened"

	cutoff := time.Now().Add(-s.config.Form.LinkWindow)
	tokens, err := s.repos.EmailTokens.ListNeverOpened(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list never-opened tokens failed: %w", err)
	}

	stats := &SweepStats{}
	for i := range tokens {
		token := &tokens[i]
		stats.Processed++

		if err := s.handleNeverOpened(ctx, token, stats); err != nil {
			stats.Errors++
			metrics.SweepRecords.WithLabelValues(sweep, "error").Inc()
			logger.Error("never-opened sweep record failed",
				zap.String("token_id", token.ID.String()),
				zap.String("owner_id", token.OwnerID.String()),
				zap.Error(err))
		}
	}

	logger.Info("never-opened sweep finished",
		zap.Int("processed", stats.Processed),
		zap.Int("deferred", stats.Deferred),
		zap.Int("absorbed", stats.Absorbed),
		zap.Int("errors", stats.Errors))

	return stats, nil
}

func (s *sweepService) handleNeverOpened(ctx context.Context, token *domain.EmailToken, stats *SweepStats) error {
	const sweep = "never_opened"
	now := time.Now()

	optedOut, err := s.ownerOptedOut(ctx, token.OwnerID)
	if err != nil {
		return err
	}
	capped := false
	if !optedOut {
		if capped, err = s.atReminderCap(ctx, token.OwnerID); err != nil {
			return err
		}
	}

	if optedOut || capped {
		if err := s.repos.EmailTokens.MarkUsed(ctx, token.ID, now); err != nil && !errors.Is(err, domain.ErrNoRowsAffected) {
			return fmt.Errorf("absorb token failed: %w", err)
		}
		stats.Absorbed++
		metrics.SweepRecords.WithLabelValues(sweep, "absorbed").Inc()
		return nil
	}

	if err := s.enrollDeferral(ctx, token.OwnerID); err != nil {
		return err
	}
	if err := s.repos.EmailTokens.MarkUsed(ctx, token.ID, now); err != nil && !errors.Is(err, domain.ErrNoRowsAffected) {
		return fmt.Errorf("mark token used failed: %w", err)
	}
	if err := s.mintReminder(ctx, token.OwnerID); err != nil {
		return err
	}

	stats.Deferred++
	metrics.SweepRecords.WithLabelValues(sweep, "deferred").Inc()
	return nil
}

// enrollDeferral is the sweep-side twin of the user-initiated defer: create
// at one attempt or bump below the cap.
func (s *sweepService) enrollDeferral(ctx context.Context, ownerID uuid.UUID) error {
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

	if _, err := s.repos.Deferrals.IncrementIfBelowCap(ctx, ownerID, s.reminderCap()); err != nil {
		return fmt.Errorf("increment deferral failed: %w", err)
	}

	return nil
}

// RunStaleActivation handles tokens opened but abandoned past the
// activation window. The token is left open so the owner can still reopen
// the same link before the true expiry; only the deferral bookkeeping moves.
func (s *sweepService) RunStaleActivation(ctx context.Context) (*SweepStats, error) {
	const sweep = "stale_activation"

	cutoff := time.Now().Add(-s.config.Form.ActivationWindow)
	tokens, err := s.repos.EmailTokens.ListStaleActivated(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale-activated tokens failed: %w", err)
	}

	stats := &SweepStats{}
	for i := range tokens {
		token := &tokens[i]
		stats.Processed++

		if err := s.handleStaleActivation(ctx, token, stats); err != nil {
			stats.Errors++
			metrics.SweepRecords.WithLabelValues(sweep, "error").Inc()
			logger.Error("stale-activation sweep record failed",
				zap.String("token_id", token.ID.String()),
				zap.String("owner_id", token.OwnerID.String()),
				zap.Error(err))
		}
	}

	logger.Info("stale-activation sweep finished",
		zap.Int("processed", stats.Processed),
		zap.Int("deferred", stats.Deferred),
		zap.Int("absorbed", stats.Absorbed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors))

	return stats, nil
}

func (s *sweepService) handleStaleActivation(ctx context.Context, token *domain.EmailToken, stats *SweepStats) error {
	const sweep = "stale_activation"
	now := time.Now()

	optedOut, err := s.ownerOptedOut(ctx, token.OwnerID)
	if err != nil {
		return err
	}
	if optedOut {
		if err := s.repos.EmailTokens.MarkUsed(ctx, token.ID, now); err != nil && !errors.Is(err, domain.ErrNoRowsAffected) {
			return fmt.Errorf("absorb token failed: %w", err)
		}
		stats.Absorbed++
		metrics.SweepRecords.WithLabelValues(sweep, "absorbed").Inc()
		return nil
	}

	capped, err := s.atReminderCap(ctx, token.OwnerID)
	if err != nil {
		return err
	}
	if capped {
		if err := s.repos.EmailTokens.MarkUsed(ctx, token.ID, now); err != nil && !errors.Is(err, domain.ErrNoRowsAffected) {
			return fmt.Errorf("absorb token failed: %w", err)
		}
		if err := s.repos.Deferrals.DeleteByOwner(ctx, token.OwnerID); err != nil {
			return fmt.Errorf("delete deferral failed: %w", err)
		}
		stats.Absorbed++
		metrics.SweepRecords.WithLabelValues(sweep, "absorbed").Inc()
		return nil
	}

	deferral, err := s.repos.Deferrals.GetByOwner(ctx, token.OwnerID)
	if errors.Is(err, domain.ErrNotFound) {
		created := &domain.Deferral{
			OwnerID:    token.OwnerID,
			Attempts:   1,
			DeferredAt: now,
		}
		if err := s.repos.Deferrals.Create(ctx, created); err != nil {
			return fmt.Errorf("create deferral failed: %w", err)
		}
		stats.Deferred++
		metrics.SweepRecords.WithLabelValues(sweep, "deferred").Inc()
		return nil
	}
	if err != nil {
		return fmt.Errorf("get deferral failed: %w", err)
	}

	// The same abandonment must not be counted twice: if the deferral was
	// already refreshed after this activation, a repeat run is a no-op.
	if token.ActivatedAt != nil && deferral.DeferredAt.After(*token.ActivatedAt) {
		stats.Skipped++
		metrics.SweepRecords.WithLabelValues(sweep, "skipped").Inc()
		return nil
	}

	if deferral.Attempts >= s.reminderCap() {
		if err := s.repos.EmailTokens.MarkUsed(ctx, token.ID, now); err != nil && !errors.Is(err, domain.ErrNoRowsAffected) {
			return fmt.Errorf("absorb token failed: %w", err)
		}
		stats.Absorbed++
		metrics.SweepRecords.WithLabelValues(sweep, "absorbed").Inc()
		return nil
	}

	if _, err := s.repos.Deferrals.IncrementIfBelowCap(ctx, token.OwnerID, s.reminderCap()); err != nil {
		return fmt.Errorf("increment deferral failed: %w", err)
	}

	stats.Deferred++
	metrics.SweepRecords.WithLabelValues(sweep, "deferred").Inc()
	return nil
}

// RunDeferredResend sends the next reminder to every deferred owner still
// below the cap, then clears out deferrals that no longer belong in the
// cycle.
func (s *sweepService) RunDeferredResend(ctx context.Context) (*SweepStats, error) {
	const sweep = "deferred_resend"

	deferrals, err := s.repos.Deferrals.ListBelowCap(ctx, s.reminderCap())
	if err != nil {
		return nil, fmt.Errorf("list deferrals failed: %w", err)
	}

	stats := &SweepStats{}
	for i := range deferrals {
		deferral := &deferrals[i]
		stats.Processed++

		if err := s.handleDeferredResend(ctx, deferral, stats); err != nil {
			stats.Errors++
			metrics.SweepRecords.WithLabelValues(sweep, "error").Inc()
			logger.Error("deferred-resend sweep record failed",
				zap.String("owner_id", deferral.OwnerID.String()),
				zap.Error(err))
		}
	}

	if err := s.cleanupDeferrals(ctx, stats); err != nil {
		stats.Errors++
		logger.Error("deferral cleanup failed", zap.Error(err))
	}

	logger.Info("deferred-resend sweep finished",
		zap.Int("processed", stats.Processed),
		zap.Int("resent", stats.Resent),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors))

	return stats, nil
}

func (s *sweepService) handleDeferredResend(ctx context.Context, deferral *domain.Deferral, stats *SweepStats) error {
	const sweep = "deferred_resend"
	ownerID := deferral.OwnerID

	skip := func() error {
		if err := s.repos.Deferrals.DeleteByOwner(ctx, ownerID); err != nil {
			return fmt.Errorf("delete deferral failed: %w", err)
		}
		stats.Skipped++
		metrics.SweepRecords.WithLabelValues(sweep, "skipped").Inc()
		return nil
	}

	if _, err := s.repos.Recipients.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return skip()
		}
		return fmt.Errorf("get recipient failed: %w", err)
	}

	optedOut, err := s.ownerOptedOut(ctx, ownerID)
	if err != nil {
		return err
	}
	if optedOut {
		return skip()
	}

	completed, err := s.repos.Submissions.HasCompletedByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("check completed submission failed: %w", err)
	}
	if completed {
		return skip()
	}

	capped, err := s.atReminderCap(ctx, ownerID)
	if err != nil {
		return err
	}
	if capped {
		if err := s.repos.EmailTokens.ExpireOpenByOwner(ctx, ownerID); err != nil {
			return fmt.Errorf("expire open tokens failed: %w", err)
		}
		return skip()
	}

	if err := s.mintReminder(ctx, ownerID); err != nil {
		return err
	}

	bumped, err := s.repos.Deferrals.IncrementIfBelowCap(ctx, ownerID, s.reminderCap())
	if err != nil {
		return fmt.Errorf("increment deferral failed: %w", err)
	}
	if !bumped {
		// A concurrent sweep won the increment race; the email has gone
		// out but the counter stays clamped at the cap.
		logger.Warn("deferral already at cap during resend", zap.String("owner_id", ownerID.String()))
	}

	stats.Resent++
	metrics.SweepRecords.WithLabelValues(sweep, "resent").Inc()
	return nil
}

func (s *sweepService) cleanupDeferrals(ctx context.Context, stats *SweepStats) error {
	deleted, err := s.repos.Deferrals.DeleteWhereOwnerCompleted(ctx)
	if err != nil {
		return fmt.Errorf("delete completed-owner deferrals failed: %w", err)
	}
	stats.Skipped += int(deleted)

	capped, err := s.repos.Deferrals.ListAtCap(ctx, s.reminderCap())
	if err != nil {
		return fmt.Errorf("list capped deferrals failed: %w", err)
	}

	for i := range capped {
		ownerID := capped[i].OwnerID
		if err := s.repos.EmailTokens.ExpireOpenByOwner(ctx, ownerID); err != nil {
			logger.Error("expire open tokens during cleanup failed",
				zap.String("owner_id", ownerID.String()), zap.Error(err))
			continue
		}
		if err := s.repos.Deferrals.DeleteByOwner(ctx, ownerID); err != nil {
			logger.Error("delete capped deferral failed",
				zap.String("owner_id", ownerID.String()), zap.Error(err))
			continue
		}
		stats.Skipped++
	}

	return nil
}

// RunRetention drops terminal tokens older than the retention horizon.
func (s *sweepService) RunRetention(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.config.Form.Retention)

	deleted, err := s.repos.EmailTokens.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete terminal tokens failed: %w", err)
	}

	logger.Info("retention sweep finished", zap.Int64("deleted", deleted))

	return deleted, nil
}
