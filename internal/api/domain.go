package api

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength applies to registration and password changes, in characters.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

// PasswordTooShort counts characters, not bytes.
func PasswordTooShort(password string) bool {
	return utf8.RuneCountInString(password) < MinPasswordLength
}

func PasswordTooLong(password string) bool {
	return len(password) > MaxPasswordBytes
}

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 10

// NormalizeEmail trims and lower-cases an address before it is compared or stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail accepts a bare address with a dotted domain, e.g. ann@x.com.
// Display-name forms such as "Ann <ann@x.com>" are rejected.
func IsValidEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
