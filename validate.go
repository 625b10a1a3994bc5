package mailauth

import (
	"regexp"
	"strings"
)

var (
	emailShapeRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameShapeRe  = regexp.MustCompile(`^[A-Za-z\s]+$`)
)

// normalizeEmail lowercases and trims an address. Every map key and
// store lookup in the engine goes through this.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeOTP lowercases and trims a candidate passcode; comparisons
// are case-insensitive.
func normalizeOTP(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// validEmail reports whether the normalized address has a basic mailbox
// shape and ends with one of the allow-listed domains.
func validEmail(email string, allowedDomains []string) bool {
	if !emailShapeRe.MatchString(email) {
		return false
	}
	for _, domain := range allowedDomains {
		if strings.HasSuffix(email, strings.ToLower(domain)) {
			return true
		}
	}
	return false
}

// validName reports whether the trimmed display name is letters and
// whitespace only within the configured length bounds.
func validName(name string, cfg ValidationConfig) bool {
	if len(name) < cfg.MinNameLength || len(name) > cfg.MaxNameLength {
		return false
	}
	return nameShapeRe.MatchString(name)
}
