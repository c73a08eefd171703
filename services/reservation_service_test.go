package services

import (
	"testing"
	"time"

	"hms-backend/models"
	"hms-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNightsBetween(t *testing.T) {
	assert.Equal(t, 2, NightsBetween(day("2026-09-01"), day("2026-09-03")))
	assert.Equal(t, 1, NightsBetween(day("2026-09-01"), day("2026-09-02")))
	// same-day stay bills as one night
	assert.Equal(t, 1, NightsBetween(day("2026-09-01"), day("2026-09-01")))
}

func TestDatesOverlap(t *testing.T) {
	a, b := day("2026-09-01"), day("2026-09-05")

	assert.True(t, DatesOverlap(a, b, day("2026-09-03"), day("2026-09-07")))
	assert.True(t, DatesOverlap(a, b, day("2026-09-02"), day("2026-09-03")))
	assert.True(t, DatesOverlap(a, b, day("2026-08-30"), day("2026-09-02")))

	// back-to-back stays share a boundary day without conflicting
	assert.False(t, DatesOverlap(a, b, day("2026-09-05"), day("2026-09-08")))
	assert.False(t, DatesOverlap(day("2026-09-05"), day("2026-09-08"), a, b))
	assert.False(t, DatesOverlap(a, b, day("2026-09-10"), day("2026-09-12")))
}

func TestBlockEnd(t *testing.T) {
	in, out := day("2026-09-01"), day("2026-09-03")
	assert.Equal(t, out, blockEnd(in, out))

	// a same-day stay still holds the room for one night
	end := blockEnd(in, in)
	assert.Equal(t, in.Add(24*time.Hour), end)
	assert.True(t, DatesOverlap(in, end, in, in.Add(24*time.Hour)))
}

func TestRoomStatusForReservationStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{models.ReservationStatusCheckedIn, models.RoomStatusOccupied},
		{models.ReservationStatusCheckedOut, models.RoomStatusAvailable},
		{models.ReservationStatusCancelled, models.RoomStatusAvailable},
		{models.ReservationStatusPending, models.RoomStatusReserved},
		{models.ReservationStatusConfirmed, models.RoomStatusReserved},
		{models.ReservationStatusNoShow, models.RoomStatusReserved},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoomStatusForReservationStatus(tt.status), tt.status)
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, day("2026-09-01"), got)

	got, err = parseDate("2026-09-01T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDate("01/09/2026")
	assert.Error(t, err)
	_, err = parseDate("")
	assert.Error(t, err)
}

func TestResolveAssignmentDefaults(t *testing.T) {
	a, err := resolveAssignment(RoomAssignmentInput{
		RoomID:       4,
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		RatePerNight: "100",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(4), a.roomID)
	assert.Equal(t, 1, a.adults)
	assert.Equal(t, 0, a.children)
	assert.Equal(t, "100.00", a.ratePerNight.StringFixed(2))
	// total defaults to rate times nights
	assert.Equal(t, "200.00", a.totalAmount.StringFixed(2))
}

func TestResolveAssignmentExplicitTotal(t *testing.T) {
	a, err := resolveAssignment(RoomAssignmentInput{
		RoomID:       4,
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		RatePerNight: "100",
		TotalAmount:  "180.00",
		Adults:       2,
		Children:     1,
	})
	require.NoError(t, err)

	assert.Equal(t, "180.00", a.totalAmount.StringFixed(2))
	assert.Equal(t, 2, a.adults)
	assert.Equal(t, 1, a.children)
}

func TestResolveAssignmentRejectsBadInput(t *testing.T) {
	var ve *utils.ValidationError

	_, err := resolveAssignment(RoomAssignmentInput{
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rooms.roomId", ve.Field)

	_, err = resolveAssignment(RoomAssignmentInput{
		RoomID:       4,
		CheckInDate:  "not-a-date",
		CheckOutDate: "2026-09-03",
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rooms.checkInDate", ve.Field)

	_, err = resolveAssignment(RoomAssignmentInput{
		RoomID:       4,
		CheckInDate:  "2026-09-03",
		CheckOutDate: "2026-09-01",
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rooms.checkOutDate", ve.Field)

	_, err = resolveAssignment(RoomAssignmentInput{
		RoomID:       4,
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		RatePerNight: "lots",
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rooms.ratePerNight", ve.Field)
}

func TestUpdateInputModeDetection(t *testing.T) {
	status := "checked-in"
	flat := UpdateReservationInput{Status: &status}
	assert.False(t, flat.IsComprehensive())

	comprehensive := UpdateReservationInput{Rooms: &[]RoomAssignmentInput{}}
	assert.True(t, comprehensive.IsComprehensive())

	guestOnly := UpdateReservationInput{Guest: &GuestUpdateInput{}}
	assert.True(t, guestOnly.IsComprehensive())
}
