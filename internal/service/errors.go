package service

import "errors"

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrLinkExpired      = errors.New("link expired")
	ErrLinkClosed       = errors.New("link closed")
	ErrLinkDeferred     = errors.New("link deferred, a new link is on its way")
	ErrAlreadySubmitted = errors.New("form already submitted")
	ErrUnsubscribed     = errors.New("recipient unsubscribed")

	ErrInvalidProviderToken = errors.New("invalid provider token")
	ErrPhoneUnparseable     = errors.New("phone number unparseable")
	ErrPhoneMismatch        = errors.New("phone number mismatch")
	ErrPhoneNotVerified     = errors.New("phone not verified")
	ErrOtpExpired           = errors.New("otp verification expired")

	ErrOrgNotFound         = errors.New("organization not found")
	ErrInvalidOrgReference = errors.New("invalid organization reference")
	ErrSourceMismatch      = errors.New("source tag does not match organization reference")

	ErrDraftNotFound = errors.New("draft not found")

	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInviteAlreadyOpen = errors.New("an open invite already exists for this recipient")

	ErrOAuthDisabled = errors.New("discord oauth disabled")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DuplicateUserError reports a conflict with an existing directory record.
type DuplicateUserError struct {
	ExistingID string
}

func (e *DuplicateUserError) Error() string { return "user already exists in directory" }
