package v1

import (
	"errors"
	"net/http"

	"github.com/badal-community/backend/internal/service"
)

// The four user-remediation states get distinct wording: nothing to do,
// wait for a new link, resubscribe, request a new link.
const (
	MsgAlreadySubmitted = "you have already submitted this form"
	MsgLinkClosed       = "this link is closed, a new link will be emailed to you"
	MsgUnsubscribed     = "you have unsubscribed from these emails"
	MsgExpired          = "this link has expired, please request a new one"

	MsgLinkNotFound     = "link not found"
	MsgDraftNotFound    = "no saved draft found"
	MsgOrgNotFound      = "organization not found"
	MsgInvalidOrgRef    = "invalid organization reference"
	MsgSourceMismatch   = "organization source does not match reference type"
	MsgInvalidProvider  = "invalid verification token"
	MsgPhoneUnparseable = "phone number could not be parsed"
	MsgPhoneMismatch    = "phone number does not match the verified one"
	MsgPhoneNotVerified = "phone number is not verified"
	MsgOtpExpired       = "phone verification has expired, please verify again"

	MsgRecipientNotFound  = "recipient not found"
	MsgInviteAlreadyOpen  = "recipient already has an open invitation"
	MsgInvalidCredentials = "invalid credentials"
	MsgOAuthDisabled      = "discord sign-in is not available"

	MsgInternalError = "internal error"
)

// ErrorStruct is the JSON error envelope; every failure carries a message.
type ErrorStruct struct {
	Message string `json:"message"`
} // @name ErrorStruct

// serviceErrorStatus maps a lifecycle error to its HTTP status and
// user-facing message. Unknown errors collapse to a bare 500.
func serviceErrorStatus(err error) (int, string) {
	var dup *service.DuplicateUserError
	if errors.As(err, &dup) {
		return http.StatusConflict, "user already exists"
	}

	switch {
	case errors.Is(err, service.ErrTokenNotFound):
		return http.StatusNotFound, MsgLinkNotFound
	case errors.Is(err, service.ErrDraftNotFound):
		return http.StatusNotFound, MsgDraftNotFound
	case errors.Is(err, service.ErrRecipientNotFound):
		return http.StatusNotFound, MsgRecipientNotFound
	case errors.Is(err, service.ErrAlreadySubmitted):
		return http.StatusBadRequest, MsgAlreadySubmitted
	case errors.Is(err, service.ErrLinkClosed), errors.Is(err, service.ErrLinkDeferred):
		return http.StatusBadRequest, MsgLinkClosed
	case errors.Is(err, service.ErrUnsubscribed):
		return http.StatusBadRequest, MsgUnsubscribed
	case errors.Is(err, service.ErrLinkExpired):
		return http.StatusBadRequest, MsgExpired
	case errors.Is(err, service.ErrOrgNotFound):
		return http.StatusBadRequest, MsgOrgNotFound
	case errors.Is(err, service.ErrInvalidOrgReference):
		return http.StatusBadRequest, MsgInvalidOrgRef
	case errors.Is(err, service.ErrSourceMismatch):
		return http.StatusBadRequest, MsgSourceMismatch
	case errors.Is(err, service.ErrInvalidProviderToken):
		return http.StatusBadRequest, MsgInvalidProvider
	case errors.Is(err, service.ErrPhoneUnparseable):
		return http.StatusBadRequest, MsgPhoneUnparseable
	case errors.Is(err, service.ErrPhoneMismatch):
		return http.StatusBadRequest, MsgPhoneMismatch
	case errors.Is(err, service.ErrPhoneNotVerified):
		return http.StatusBadRequest, MsgPhoneNotVerified
	case errors.Is(err, service.ErrOtpExpired):
		return http.StatusBadRequest, MsgOtpExpired
	case errors.Is(err, service.ErrInviteAlreadyOpen):
		return http.StatusConflict, MsgInviteAlreadyOpen
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, MsgInvalidCredentials
	case errors.Is(err, service.ErrOAuthDisabled):
		return http.StatusBadRequest, MsgOAuthDisabled
	}

	return http.StatusInternalServerError, MsgInternalError
}
