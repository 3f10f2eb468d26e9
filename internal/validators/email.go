package validators

import (
	"net/mail"
	"strings"
	"time"
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmailValid checks the address syntax only.
func IsEmailValid(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}

// IsValidPeriod accepts a YYYY-MM payout period.
func IsValidPeriod(p string) bool {
	_, err := time.Parse("2006-01", p)
	return err == nil
}
