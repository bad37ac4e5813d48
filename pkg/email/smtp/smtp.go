package smtp

import (
	"errors"
	"fmt"
	"time"

	"github.com/badal-community/backend/pkg/email"

	"github.com/go-gomail/gomail"
)

var ErrSendTimeout = errors.New("smtp send timed out")

type SMTPSender struct {
	from    string
	dialer  *gomail.Dialer
	timeout time.Duration
}

func NewSMTPSender(from, pass, host string, port int, timeout time.Duration) (*SMTPSender, error) {
	if !email.IsEmailValid(from) {
		return nil, errors.New("invalid from email")
	}

	return &SMTPSender{
		from:    from,
		dialer:  gomail.NewDialer(host, port, from, pass),
		timeout: timeout,
	}, nil
}

// Send delivers one message. The SMTP dial+send is bounded by the configured
// timeout; a timeout counts as a failed delivery for the caller's
// bookkeeping, it is never left pending.
func (s *SMTPSender) Send(input email.SendEmailInput) error {
	if err := input.Validate(); err != nil {
		return fmt.Errorf("validate send input: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", input.To)
	msg.SetHeader("Subject", input.Subject)
	msg.SetBody("text/html", input.Body)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	case <-time.After(s.timeout):
		return ErrSendTimeout
	}
}
