package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ttacon/libphonenumber"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone reduces a phone number to its digits-only form. This is
// the guest dedup key: "(555) 010-0" and "555-0100" land on the same
// guest record.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(strings.TrimSpace(phone), "")
}

// ValidatePhone checks the number against the configured default region.
// Numbers the library cannot parse at all are rejected; short local
// numbers that parse but fail strict validation are accepted as long as
// they carry at least 6 digits, since front-desk entries are often local
// shorthand.
func ValidatePhone(phone string) error {
	digits := NormalizePhone(phone)
	if len(digits) < 6 {
		return fmt.Errorf("phone number too short")
	}
	region := EnvOrDefault("DEFAULT_PHONE_REGION", "US")
	if _, err := libphonenumber.Parse(phone, region); err != nil {
		return fmt.Errorf("invalid phone number: %v", err)
	}
	return nil
}

// IsValidPhone is the binding-validator form of ValidatePhone.
func IsValidPhone(phone string) bool {
	return ValidatePhone(phone) == nil
}
