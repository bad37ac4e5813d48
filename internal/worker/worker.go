package worker

import (
	"context"

	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/domain"
	emailProvider "github.com/badal-community/backend/pkg/email"
)

type Workers struct {
	EmailSender EmailSender
}

type Deps struct {
	EmailProvider emailProvider.Sender
	Config        *config.Config
}

type EmailSender interface {
	SendLinkEmail(ctx context.Context, recipient string, linkToken string, emailType domain.EmailType) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.EmailProvider, deps.Config.Email, deps.Config.Form),
	}
}
