package domain

import (
	"regexp"
	"strings"
)

// E.164 shape: optional leading +, country code starting 1-9, at least seven
// digits total. Shorter strings are junk extractions, not dialable numbers.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizePhone converts a raw extracted phone number into E.164 form.
// A bare 10-digit number is assumed domestic and gets defaultPrefix (e.g.
// "+91"); any other all-numeric string gets a leading "+". Returns false
// when the result does not conform, so it is never handed to the SMS
// gateway.
func NormalizePhone(raw, defaultPrefix string) (string, bool) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", false
	}

	switch {
	case allDigits(p) && len(p) == 10:
		p = defaultPrefix + p
	case allDigits(p):
		p = "+" + p
	}

	if !e164Pattern.MatchString(p) {
		return "", false
	}
	return p, true
}
