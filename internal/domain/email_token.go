package domain

import (
	"time"

	"github.com/google/uuid"
)

type EmailType string

const (
	EmailTypeInitial  EmailType = "initial"
	EmailTypeReminder EmailType = "reminder"
)

type TokenStatus string

const (
	TokenStatusSent    TokenStatus = "sent"
	TokenStatusExpired TokenStatus = "expired"
	TokenStatusUsed    TokenStatus = "used"
	TokenStatusFailed  TokenStatus = "failed"
)

// EmailToken is one outbound call-to-action email link and its lifecycle
// state. A token is open while status is 'sent' and used_at is unset; the
// storage layer allows at most one open token per owner.
type EmailToken struct {
	ID              uuid.UUID   `db:"id"`
	OwnerID         uuid.UUID   `db:"owner_id"`
	LinkToken       string      `db:"link_token"`
	EmailType       EmailType   `db:"email_type"`
	Status          TokenStatus `db:"status"`
	SentAt          time.Time   `db:"sent_at"`
	ActivatedAt     *time.Time  `db:"activated_at"`
	UsedAt          *time.Time  `db:"used_at"`
	VerifiedPhone   *string     `db:"verified_phone"`
	PhoneVerifiedAt *time.Time  `db:"phone_verified_at"`
	OAuthInProgress bool        `db:"oauth_in_progress"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

// Open reports whether the token can still be acted on.
func (t *EmailToken) Open() bool {
	return t.Status == TokenStatusSent && t.UsedAt == nil
}

// ActivationWindow returns how long the token stays valid once activated.
func (t *EmailToken) ActivationWindow(base, oauth time.Duration) time.Duration {
	if t.OAuthInProgress {
		return oauth
	}
	return base
}

// ExpiresAt computes when an open token expires: the activation window from
// activated_at once opened, otherwise the link window from sent_at.
func (t *EmailToken) ExpiresAt(base, oauth, linkWindow time.Duration) time.Time {
	if t.ActivatedAt != nil {
		return t.ActivatedAt.Add(t.ActivationWindow(base, oauth))
	}
	return t.SentAt.Add(linkWindow)
}
