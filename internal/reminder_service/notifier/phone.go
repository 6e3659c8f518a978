package notifier

import (
	"regexp"
	"strings"
)

var usNumberWithCountryCode = regexp.MustCompile(`^1\d{10}$`)

// NormalizePhoneNumber converts a destination into a dialable E.164 form.
// Numbers already in international form pass through unchanged; an 11-digit
// number starting with 1 gets a bare "+"; anything else (typically a 10-digit
// national number) gets a "+1" country-code prefix.
func NormalizePhoneNumber(to string) string {
	if strings.HasPrefix(to, "+") {
		return to
	}
	if usNumberWithCountryCode.MatchString(to) {
		return "+" + to
	}
	return "+1" + to
}
