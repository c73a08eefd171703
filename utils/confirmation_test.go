package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationNumberFormat(t *testing.T) {
	n := NewConfirmationNumber()
	assert.Len(t, n, 11)
	assert.True(t, IsConfirmationNumber(n), "got %q", n)
}

func TestConfirmationNumberAt(t *testing.T) {
	at := time.UnixMilli(1712345678901)
	assert.Equal(t, "RES45678901", ConfirmationNumberAt(at))

	// retries a few milliseconds apart must produce different numbers
	assert.NotEqual(t,
		ConfirmationNumberAt(at),
		ConfirmationNumberAt(at.Add(2*time.Millisecond)))
}

func TestIsConfirmationNumber(t *testing.T) {
	assert.True(t, IsConfirmationNumber("RES00000000"))
	assert.False(t, IsConfirmationNumber("RES1234567"))
	assert.False(t, IsConfirmationNumber("RES123456789"))
	assert.False(t, IsConfirmationNumber("res12345678"))
	assert.False(t, IsConfirmationNumber("ABC12345678"))
	assert.False(t, IsConfirmationNumber(""))
}
