package services

import (
	"io"
	"os"
	"strings"
	"testing"

	"hms-backend/models"
	"hms-backend/permissions"
	"hms-backend/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Integration coverage for the reservation orchestrator against a real
// MySQL. Run with:
//
//	INTEGRATION_TESTS=1 TEST_MYSQL_DSN='root:root@tcp(127.0.0.1:3306)/hms_test?charset=utf8mb4&parseTime=True&loc=UTC' go test ./services/

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires mysql)")
	}
	dsn := utils.EnvOrDefault("TEST_MYSQL_DSN",
		"root:root@tcp(127.0.0.1:3306)/hms_test?charset=utf8mb4&parseTime=True&loc=UTC")

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	entities := []interface{}{
		&models.OutboxEvent{},
		&models.ReservationRoom{},
		&models.Reservation{},
		&models.Room{},
		&models.RoomType{},
		&models.Guest{},
		&models.Tax{},
		&models.Branch{},
	}
	require.NoError(t, db.Migrator().DropTable(entities...))
	require.NoError(t, db.AutoMigrate(
		&models.Branch{},
		&models.RoomType{},
		&models.Room{},
		&models.Guest{},
		&models.Tax{},
		&models.Reservation{},
		&models.ReservationRoom{},
		&models.OutboxEvent{},
	))
	return db
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type testFixture struct {
	branch   models.Branch
	roomType models.RoomType
	room1    models.Room
	room2    models.Room
}

func seedFixture(t *testing.T, db *gorm.DB) testFixture {
	t.Helper()
	f := testFixture{
		branch:   models.Branch{Name: "Riverside"},
		roomType: models.RoomType{Name: "Deluxe", MaxOccupancy: 2},
	}
	require.NoError(t, db.Create(&f.branch).Error)
	require.NoError(t, db.Create(&f.roomType).Error)

	rate := models.NewMoney(decimal.RequireFromString("100"))
	f.room1 = models.Room{BranchID: f.branch.ID, RoomTypeID: f.roomType.ID, Number: "101", RatePerNight: rate}
	f.room2 = models.Room{BranchID: f.branch.ID, RoomTypeID: f.roomType.ID, Number: "102", RatePerNight: rate}
	require.NoError(t, db.Create(&f.room1).Error)
	require.NoError(t, db.Create(&f.room2).Error)

	vat := models.Tax{TaxName: "VAT", Rate: decimal.RequireFromString("10"), ApplicationType: models.TaxApplicationReservation}
	require.NoError(t, db.Create(&vat).Error)
	return f
}

func superadmin() permissions.Actor {
	return permissions.Actor{UserID: 1, Role: permissions.RoleSuperAdmin}
}

func TestReservationLifecycle(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := NewReservationService(db, quietLogger())

	created, err := svc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Alice Chan", Phone: "555-0100"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room1.ID,
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-03",
			RatePerNight: "100",
		}},
	})
	require.NoError(t, err)

	assert.True(t, utils.IsConfirmationNumber(created.ID), "got %q", created.ID)
	assert.Equal(t, models.ReservationStatusConfirmed, created.Status)
	// 2 nights x 100 + 10% VAT
	assert.Equal(t, "220.00", created.TotalAmount.StringFixed(2))
	assert.Equal(t, "20.00", created.TaxAmount.StringFixed(2))
	require.Len(t, created.Rooms, 1)
	assert.Equal(t, "200.00", created.Rooms[0].TotalAmount.StringFixed(2))

	var room models.Room
	require.NoError(t, db.First(&room, f.room1.ID).Error)
	assert.Equal(t, models.RoomStatusReserved, room.Status)

	var guest models.Guest
	require.NoError(t, db.First(&guest, created.GuestID).Error)
	assert.Equal(t, 1, guest.ReservationCount)

	var pending int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("resource = ? AND event_kind = ? AND status = ?",
			"reservations", models.EventCreated, models.OutboxStatusPending).
		Count(&pending).Error)
	assert.EqualValues(t, 1, pending)

	// same phone, different formatting: lands on the existing guest
	second, err := svc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Alice Chan", Phone: "(555) 0100"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room2.ID,
			CheckInDate:  "2026-09-10",
			CheckOutDate: "2026-09-12",
			RatePerNight: "100",
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, created.GuestID, second.GuestID)
	require.NoError(t, db.First(&guest, created.GuestID).Error)
	assert.Equal(t, 2, guest.ReservationCount)

	// overlapping dates on a held room are rejected
	_, err = svc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Bob Lee", Phone: "555-0199"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room1.ID,
			CheckInDate:  "2026-09-02",
			CheckOutDate: "2026-09-04",
			RatePerNight: "100",
		}},
	})
	var conflict *utils.ConflictError
	require.ErrorAs(t, err, &conflict)

	// check-in cascades to the room and stamps actual arrival
	checkedIn := models.ReservationStatusCheckedIn
	updated, err := svc.Update(superadmin(), created.ID, UpdateReservationInput{Status: &checkedIn})
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCheckedIn, updated.Status)
	require.NoError(t, db.First(&room, f.room1.ID).Error)
	assert.Equal(t, models.RoomStatusOccupied, room.Status)
	require.Len(t, updated.Rooms, 1)
	assert.NotNil(t, updated.Rooms[0].ActualCheckIn)

	// check-out frees the room and closes the reservation for edits
	checkedOut := models.ReservationStatusCheckedOut
	updated, err = svc.Update(superadmin(), created.ID, UpdateReservationInput{Status: &checkedOut})
	require.NoError(t, err)
	require.NoError(t, db.First(&room, f.room1.ID).Error)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)
	assert.NotNil(t, updated.Rooms[0].ActualCheckOut)

	var forbidden *utils.EditForbiddenError
	_, err = svc.Update(superadmin(), created.ID, UpdateReservationInput{Status: &checkedIn})
	require.ErrorAs(t, err, &forbidden)
	_, err = svc.Cancel(superadmin(), created.ID)
	require.ErrorAs(t, err, &forbidden)
}

func TestReservationCancel(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := NewReservationService(db, quietLogger())

	created, err := svc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Alice Chan", Phone: "555-0100"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room1.ID,
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-03",
			RatePerNight: "100",
		}},
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(superadmin(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCancelled, cancelled.Status)

	// the row survives for history, the room is freed
	var room models.Room
	require.NoError(t, db.First(&room, f.room1.ID).Error)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)

	var forbidden *utils.EditForbiddenError
	_, err = svc.Cancel(superadmin(), created.ID)
	require.ErrorAs(t, err, &forbidden)

	// cancelled reservations stop blocking the dates
	_, err = svc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Bob Lee", Phone: "555-0199"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room1.ID,
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-03",
			RatePerNight: "100",
		}},
	})
	require.NoError(t, err)
}

func TestAvailableRoomsExcludeBooked(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	resSvc := NewReservationService(db, quietLogger())
	roomSvc := NewRoomService(db)

	_, err := resSvc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Alice Chan", Phone: "555-0100"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room1.ID,
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-03",
			RatePerNight: "100",
		}},
	})
	require.NoError(t, err)

	rooms, err := roomSvc.GetAvailableRooms(f.branch.ID, day("2026-09-02"), day("2026-09-04"))
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, f.room2.ID, rooms[0].ID)

	// back-to-back: a stay starting on the previous check-out day is fine
	rooms, err = roomSvc.GetAvailableRooms(f.branch.ID, day("2026-09-03"), day("2026-09-05"))
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func addRoom(t *testing.T, db *gorm.DB, f testFixture, number, status string) models.Room {
	t.Helper()
	room := models.Room{
		BranchID:     f.branch.ID,
		RoomTypeID:   f.roomType.ID,
		Number:       number,
		Status:       status,
		RatePerNight: models.NewMoney(decimal.RequireFromString("100")),
	}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func roomStatus(t *testing.T, db *gorm.DB, id uint) string {
	t.Helper()
	var room models.Room
	require.NoError(t, db.First(&room, id).Error)
	return room.Status
}

func TestComprehensiveEditReconciliation(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	room3 := addRoom(t, db, f, "103", models.RoomStatusAvailable)
	room4 := addRoom(t, db, f, "104", models.RoomStatusAvailable)
	svc := NewReservationService(db, quietLogger())

	line := func(roomID uint) RoomAssignmentInput {
		return RoomAssignmentInput{
			RoomID:       roomID,
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-03",
			RatePerNight: "100",
		}
	}
	created, err := svc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Alice Chan", Phone: "555-0100"},
		BranchID: f.branch.ID,
		Rooms:    []RoomAssignmentInput{line(f.room1.ID), line(f.room2.ID), line(room3.ID)},
	})
	require.NoError(t, err)
	// 3 rooms x 2 nights x 100 + 10% VAT
	assert.Equal(t, "660.00", created.TotalAmount.StringFixed(2))

	var keptLineID uint
	for _, rr := range created.Rooms {
		if rr.RoomID == f.room2.ID {
			keptLineID = rr.ID
		}
	}
	require.NotZero(t, keptLineID)

	// keep B on new dates, drop A and C, add D
	kept := line(f.room2.ID)
	kept.ID = &keptLineID
	kept.CheckInDate = "2026-09-02"
	kept.CheckOutDate = "2026-09-04"
	updated, err := svc.Update(superadmin(), created.ID, UpdateReservationInput{
		Rooms: &[]RoomAssignmentInput{kept, line(room4.ID)},
	})
	require.NoError(t, err)

	require.Len(t, updated.Rooms, 2)
	gotRooms := map[uint]bool{}
	for _, rr := range updated.Rooms {
		gotRooms[rr.RoomID] = true
	}
	assert.True(t, gotRooms[f.room2.ID])
	assert.True(t, gotRooms[room4.ID])

	assert.Equal(t, models.RoomStatusAvailable, roomStatus(t, db, f.room1.ID))
	assert.Equal(t, models.RoomStatusAvailable, roomStatus(t, db, room3.ID))
	assert.Equal(t, models.RoomStatusReserved, roomStatus(t, db, f.room2.ID))
	assert.Equal(t, models.RoomStatusReserved, roomStatus(t, db, room4.ID))

	// totals recomputed from the snapshotted 10% rate: 2 x 200 + 40
	assert.Equal(t, "440.00", updated.TotalAmount.StringFixed(2))
	assert.Equal(t, "40.00", updated.TaxAmount.StringFixed(2))
}

func TestComprehensiveEditRoomSwap(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	inService := addRoom(t, db, f, "103", models.RoomStatusAvailable)
	outOfService := addRoom(t, db, f, "104", models.RoomStatusMaintenance)
	svc := NewReservationService(db, quietLogger())

	created, err := svc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Alice Chan", Phone: "555-0100"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room1.ID,
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-03",
			RatePerNight: "100",
		}},
	})
	require.NoError(t, err)
	lineID := created.Rooms[0].ID

	// in-place swap to another room moves the hold with it
	swap := RoomAssignmentInput{
		ID:           &lineID,
		RoomID:       inService.ID,
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		RatePerNight: "100",
	}
	_, err = svc.Update(superadmin(), created.ID, UpdateReservationInput{
		Rooms: &[]RoomAssignmentInput{swap},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, roomStatus(t, db, f.room1.ID))
	assert.Equal(t, models.RoomStatusReserved, roomStatus(t, db, inService.ID))

	// swapping onto an out-of-service room is rejected, state unchanged
	swap.RoomID = outOfService.ID
	_, err = svc.Update(superadmin(), created.ID, UpdateReservationInput{
		Rooms: &[]RoomAssignmentInput{swap},
	})
	var conflict *utils.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.RoomStatusReserved, roomStatus(t, db, inService.ID))
	assert.Equal(t, models.RoomStatusMaintenance, roomStatus(t, db, outOfService.ID))
}

func TestSameDayStayBlocksItsNight(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	resSvc := NewReservationService(db, quietLogger())
	roomSvc := NewRoomService(db)

	_, err := resSvc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Alice Chan", Phone: "555-0100"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room1.ID,
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-01",
			RatePerNight: "100",
		}},
	})
	require.NoError(t, err)

	// the stored same-day row must still block its night
	_, err = resSvc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Bob Lee", Phone: "555-0199"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room1.ID,
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-03",
			RatePerNight: "100",
		}},
	})
	var conflict *utils.ConflictError
	require.ErrorAs(t, err, &conflict)

	rooms, err := roomSvc.GetAvailableRooms(f.branch.ID, day("2026-09-01"), day("2026-09-02"))
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, f.room2.ID, rooms[0].ID)

	// the next day is free again
	rooms, err = roomSvc.GetAvailableRooms(f.branch.ID, day("2026-09-02"), day("2026-09-03"))
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestDeactivatedGuestReactivatedOnRebooking(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	guestSvc := NewGuestService(db)
	resSvc := NewReservationService(db, quietLogger())

	guest, err := guestSvc.Create(GuestInput{FullName: "Alice Chan", Phone: "555-0100"}, &f.branch.ID)
	require.NoError(t, err)
	require.NoError(t, guestSvc.Deactivate(guest.ID))

	// booking with the same phone revives the record, never a 409
	created, err := resSvc.Create(superadmin(), CreateReservationInput{
		Guest:    GuestInput{FullName: "Alice Chan-Wong", Phone: "555-0100"},
		BranchID: f.branch.ID,
		Rooms: []RoomAssignmentInput{{
			RoomID:       f.room1.ID,
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-03",
			RatePerNight: "100",
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, guest.ID, created.GuestID)

	var revived models.Guest
	require.NoError(t, db.First(&revived, guest.ID).Error)
	require.NotNil(t, revived.IsActive)
	assert.True(t, *revived.IsActive)
	assert.Equal(t, "Alice Chan-Wong", revived.FullName)
	assert.Equal(t, 1, revived.ReservationCount)

	// direct guest creation reuses the same record as well
	again, err := guestSvc.Create(GuestInput{FullName: "Alice Chan-Wong", Phone: "(555) 0100"}, &f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, guest.ID, again.ID)
}

func TestBranchDeleteTwoPhase(t *testing.T) {
	db := openTestDB(t)
	svc := NewBranchService(db)

	branch := models.Branch{Name: "Hilltop"}
	require.NoError(t, db.Create(&branch).Error)

	action, err := svc.Delete(branch.ID)
	require.NoError(t, err)
	assert.Equal(t, BranchDeleteDeactivated, action)

	var got models.Branch
	require.NoError(t, db.First(&got, branch.ID).Error)
	require.NotNil(t, got.IsActive)
	assert.False(t, *got.IsActive)

	action, err = svc.Delete(branch.ID)
	require.NoError(t, err)
	assert.Equal(t, BranchDeleteDeleted, action)

	err = db.First(&got, branch.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
