package contacts

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// ErrInvalidPhone is returned when a phone number cannot be normalized.
var ErrInvalidPhone = errors.New("contacts: invalid phone number")

// NormalizePhone parses a phone number and returns it in E.164 form. Numbers
// without a country code are assumed to be US. Unparseable input fails
// closed; no call or SMS is ever placed to a guessed number.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidPhone
	}
	num, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidPhone, raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// ValidEmail reports whether the address parses as a bare RFC 5322 address.
func ValidEmail(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false
	}
	addr, err := mail.ParseAddress(trimmed)
	return err == nil && addr.Address == trimmed
}

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// ValidZip reports whether s is a 5-digit US ZIP, optionally with a +4 part.
func ValidZip(s string) bool {
	return zipPattern.MatchString(strings.TrimSpace(s))
}
