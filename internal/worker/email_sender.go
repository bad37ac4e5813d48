package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/domain"
	emailProvider "github.com/badal-community/backend/pkg/email"
)

type emailSender struct {
	sender emailProvider.Sender
	config config.EmailConfig
	form   config.FormConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
	form config.FormConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		config: config,
		form:   form,
	}
}

type linkEmailInput struct {
	FormURL string
}

// SendLinkEmail renders and delivers the invitation or reminder email
// pointing at the tokened form URL.
func (s *emailSender) SendLinkEmail(ctx context.Context, recipient string, linkToken string, emailType domain.EmailType) error {
	if !s.config.Enabled {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		subject      string
		templateFile string
	)
	switch emailType {
	case domain.EmailTypeReminder:
		subject = "Reminder: complete your contributor profile"
		templateFile = s.config.Templates.Reminder
	default:
		subject = "Complete your contributor profile"
		templateFile = s.config.Templates.Invitation
	}

	templateInput := linkEmailInput{FormURL: formURL(s.form.PublicURL, linkToken)}
	sendInput := emailProvider.SendEmailInput{Subject: subject, To: recipient}

	if err := sendInput.GenerateBodyFromHTML(templateFile, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}

func formURL(base, linkToken string) string {
	return strings.TrimRight(base, "/") + "/form/" + linkToken
}
