package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/internal/queue/task"
	"github.com/badal-community/backend/internal/repository"
	"github.com/badal-community/backend/internal/worker"
	"github.com/badal-community/backend/pkg/logger"
	"github.com/badal-community/backend/pkg/metrics"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type sendLinkEmailProcessor struct {
	workers  *worker.Workers
	emailLog repository.EmailLog
}

func NewSendLinkEmailProcessor(workers *worker.Workers, emailLog repository.EmailLog) *sendLinkEmailProcessor {
	return &sendLinkEmailProcessor{
		workers:  workers,
		emailLog: emailLog,
	}
}

// ProcessTask delivers one link email and records the attempt in the email
// log whether or not delivery succeeded. It never returns the delivery error:
// the log entry is the outcome, the resend sweep decides what happens next.
func (p *sendLinkEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendLinkEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return fmt.Errorf("process send link email task json unmarshal failed: %w", err)
	}

	ownerID, err := uuid.Parse(data.OwnerID)
	if err != nil {
		return fmt.Errorf("process send link email task owner id parse failed: %w", err)
	}

	sendErr := p.workers.EmailSender.SendLinkEmail(ctx, data.Recipient, data.LinkToken, domain.EmailType(data.EmailType))

	result := "ok"
	if sendErr != nil {
		result = "failed"
		logger.Error("link email delivery failed",
			zap.String("owner_id", data.OwnerID),
			zap.String("email_type", data.EmailType),
			zap.Error(sendErr),
		)
	}
	metrics.EmailsSent.WithLabelValues(data.EmailType, result).Inc()

	entryID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate email log id failed: %w", err)
	}

	entry := &domain.EmailLogEntry{
		ID:        entryID,
		OwnerID:   ownerID,
		Recipient: data.Recipient,
		EmailType: domain.EmailType(data.EmailType),
		Success:   sendErr == nil,
		SentAt:    time.Now(),
	}
	if err := p.emailLog.Create(ctx, entry); err != nil {
		return fmt.Errorf("create email log entry failed: %w", err)
	}

	return nil
}
