// Package phone canonicalizes phone numbers to E.164 so that numbers from
// the form, the identity provider and the user directory compare equal.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrUnparseable = errors.New("phone number cannot be parsed")

// Normalize parses raw and returns it in E.164 form (+14155552671). Numbers
// without a country code are interpreted in defaultRegion.
func Normalize(raw string, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrUnparseable
	}

	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", ErrUnparseable
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", ErrUnparseable
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Equal reports whether two raw numbers canonicalize to the same E.164
// value. Unparseable input never compares equal.
func Equal(a, b string, defaultRegion string) bool {
	na, err := Normalize(a, defaultRegion)
	if err != nil {
		return false
	}

	nb, err := Normalize(b, defaultRegion)
	if err != nil {
		return false
	}

	return na == nb
}
