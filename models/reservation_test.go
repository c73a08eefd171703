package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalReservationStatus(t *testing.T) {
	assert.True(t, IsTerminalReservationStatus(ReservationStatusCheckedOut))
	assert.True(t, IsTerminalReservationStatus(ReservationStatusCancelled))

	for _, s := range []string{
		ReservationStatusPending,
		ReservationStatusConfirmed,
		ReservationStatusCheckedIn,
		ReservationStatusNoShow,
	} {
		assert.False(t, IsTerminalReservationStatus(s), s)
	}
}

func TestIsValidReservationStatus(t *testing.T) {
	assert.True(t, IsValidReservationStatus("confirmed"))
	assert.False(t, IsValidReservationStatus("done"))
	assert.False(t, IsValidReservationStatus(""))
}

func TestIsValidRoomStatus(t *testing.T) {
	assert.True(t, IsValidRoomStatus("available"))
	assert.True(t, IsValidRoomStatus("out-of-order"))
	assert.False(t, IsValidRoomStatus("broken"))
}
