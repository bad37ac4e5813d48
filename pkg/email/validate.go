package email

import "net/mail"

// IsEmailValid reports whether address parses as an RFC 5322 address.
func IsEmailValid(address string) bool {
	_, err := mail.ParseAddress(address)
	return err == nil
}
