package utils

import (
	"fmt"
	"regexp"
	"time"
)

const confirmationPrefix = "RES"

var confirmationPattern = regexp.MustCompile(`^RES\d{8}$`)

// NewConfirmationNumber builds a human-facing reservation id from the
// current time: RES + the last 8 digits of the millisecond timestamp.
// Not globally unique on its own; the reservations table carries the
// primary key and callers retry with a fresh number on collision.
func NewConfirmationNumber() string {
	return ConfirmationNumberAt(time.Now())
}

func ConfirmationNumberAt(t time.Time) string {
	return fmt.Sprintf("%s%08d", confirmationPrefix, t.UnixMilli()%100000000)
}

// IsConfirmationNumber reports whether s looks like a reservation id.
func IsConfirmationNumber(s string) bool {
	return confirmationPattern.MatchString(s)
}
