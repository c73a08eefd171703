package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hms-backend/models"
	"hms-backend/permissions"
	"hms-backend/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationService is the orchestrator: it creates, edits and cancels
// multi-room reservations, drives room-status transitions and computes
// totals. All state changes happen in one transaction; broadcast and
// notification side effects are written to the outbox inside that same
// transaction and delivered asynchronously.
type ReservationService struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewReservationService(db *gorm.DB, logger *logrus.Logger) *ReservationService {
	return &ReservationService{DB: db, Logger: logger}
}

const confirmationMaxRetries = 5

// ---------------------------
// Inputs
// ---------------------------

// RoomAssignmentInput is one room line of a reservation payload. ID is
// set only on comprehensive edits, to update an existing line in place.
type RoomAssignmentInput struct {
	ID              *uint  `json:"id"`
	RoomID          uint   `json:"roomId" binding:"required"`
	CheckInDate     string `json:"checkInDate" binding:"required"`
	CheckOutDate    string `json:"checkOutDate" binding:"required"`
	Adults          int    `json:"adults"`
	Children        int    `json:"children"`
	RatePerNight    string `json:"ratePerNight"`
	TotalAmount     string `json:"totalAmount"`
	SpecialRequests string `json:"specialRequests"`
}

type CreateReservationInput struct {
	Guest    GuestInput            `json:"guest" binding:"required"`
	BranchID uint                  `json:"branchId" binding:"required"`
	Status   string                `json:"status"`
	Notes    string                `json:"notes"`
	Rooms    []RoomAssignmentInput `json:"rooms" binding:"required,min=1"`
}

// ReservationFieldsInput are the scalar reservation fields a
// comprehensive edit may change.
type ReservationFieldsInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// UpdateReservationInput covers both update modes of the PATCH
// endpoint. When any of Guest/Reservation/Rooms is present the edit is
// comprehensive; otherwise the flat Status/Notes fields are treated as a
// legacy status-only edit.
type UpdateReservationInput struct {
	Guest       *GuestUpdateInput       `json:"guest"`
	Reservation *ReservationFieldsInput `json:"reservation"`
	Rooms       *[]RoomAssignmentInput  `json:"rooms"`

	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (in *UpdateReservationInput) IsComprehensive() bool {
	return in.Guest != nil || in.Reservation != nil || in.Rooms != nil
}

// ---------------------------
// Pure helpers
// ---------------------------

// NightsBetween counts billable nights. A same-day stay bills as one.
func NightsBetween(checkIn, checkOut time.Time) int {
	n := int(checkOut.Sub(checkIn).Hours() / 24)
	if n <= 0 {
		n = 1
	}
	return n
}

// DatesOverlap is the half-open range conflict test: [a,b) and [c,d)
// conflict iff a < d && c < b.
func DatesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// blockEnd widens a zero-length stay to one night so a same-day booking
// still holds its room against the overlap check.
func blockEnd(checkIn, checkOut time.Time) time.Time {
	if !checkOut.After(checkIn) {
		return checkIn.Add(24 * time.Hour)
	}
	return checkOut
}

// RoomStatusForReservationStatus maps a reservation status change onto
// the status its rooms cascade to.
func RoomStatusForReservationStatus(status string) string {
	switch status {
	case models.ReservationStatusCheckedIn:
		return models.RoomStatusOccupied
	case models.ReservationStatusCheckedOut, models.ReservationStatusCancelled:
		return models.RoomStatusAvailable
	default:
		return models.RoomStatusReserved
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// roomAssignment is a resolved, validated room line.
type roomAssignment struct {
	id              *uint
	roomID          uint
	checkIn         time.Time
	checkOut        time.Time
	adults          int
	children        int
	ratePerNight    decimal.Decimal
	totalAmount     decimal.Decimal
	specialRequests string
}

func resolveAssignment(in RoomAssignmentInput) (roomAssignment, error) {
	var out roomAssignment
	if in.RoomID == 0 {
		return out, &utils.ValidationError{Field: "rooms.roomId", Message: "is required"}
	}
	checkIn, err := parseDate(in.CheckInDate)
	if err != nil {
		return out, &utils.ValidationError{Field: "rooms.checkInDate", Message: err.Error()}
	}
	checkOut, err := parseDate(in.CheckOutDate)
	if err != nil {
		return out, &utils.ValidationError{Field: "rooms.checkOutDate", Message: err.Error()}
	}
	if checkOut.Before(checkIn) {
		return out, &utils.ValidationError{Field: "rooms.checkOutDate", Message: "must not be before checkInDate"}
	}

	rate := decimal.Zero
	if strings.TrimSpace(in.RatePerNight) != "" {
		if rate, err = parseMoney(in.RatePerNight); err != nil {
			return out, &utils.ValidationError{Field: "rooms.ratePerNight", Message: "invalid amount"}
		}
	}
	nights := NightsBetween(checkIn, checkOut)
	total := rate.Mul(decimal.NewFromInt(int64(nights))).Round(2)
	if strings.TrimSpace(in.TotalAmount) != "" {
		if total, err = parseMoney(in.TotalAmount); err != nil {
			return out, &utils.ValidationError{Field: "rooms.totalAmount", Message: "invalid amount"}
		}
	}

	adults := in.Adults
	if adults <= 0 {
		adults = 1
	}
	children := in.Children
	if children < 0 {
		children = 0
	}

	out = roomAssignment{
		id:              in.ID,
		roomID:          in.RoomID,
		checkIn:         checkIn,
		checkOut:        checkOut,
		adults:          adults,
		children:        children,
		ratePerNight:    rate,
		totalAmount:     total,
		specialRequests: strings.TrimSpace(in.SpecialRequests),
	}
	return out, nil
}

// ---------------------------
// Create
// ---------------------------

func (s *ReservationService) Create(actor permissions.Actor, input CreateReservationInput) (*models.Reservation, error) {
	if !permissions.HasPermission(actor, "reservations", "create") {
		return nil, &utils.PermissionError{Message: "missing reservations.create permission"}
	}
	branchID, ok := permissions.EffectiveBranch(actor, input.BranchID)
	if !ok {
		return nil, &utils.PermissionError{Message: "not allowed for this branch"}
	}

	status := input.Status
	if status == "" {
		status = models.ReservationStatusConfirmed
	}
	if !models.IsValidReservationStatus(status) || models.IsTerminalReservationStatus(status) {
		return nil, &utils.ValidationError{Field: "status", Message: "invalid initial status"}
	}
	if len(input.Rooms) == 0 {
		return nil, &utils.ValidationError{Field: "rooms", Message: "at least one room is required"}
	}

	assignments := make([]roomAssignment, 0, len(input.Rooms))
	for _, r := range input.Rooms {
		a, err := resolveAssignment(r)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	var branch models.Branch
	if err := s.DB.First(&branch, branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "branch"}
		}
		return nil, &utils.PersistenceError{Err: err}
	}
	if branch.IsActive != nil && !*branch.IsActive {
		return nil, &utils.ValidationError{Field: "branchId", Message: "branch is inactive"}
	}

	// The whole create runs in one transaction; a confirmation-number
	// collision aborts it and the loop retries with a fresh number.
	var reservationID string
	var txErr error
	for attempt := 0; attempt < confirmationMaxRetries; attempt++ {
		reservationID = utils.NewConfirmationNumber()
		txErr = s.DB.Transaction(func(tx *gorm.DB) error {
			return s.createTx(tx, actor, branchID, reservationID, status, input, assignments)
		})
		if txErr == nil {
			break
		}
		var conflict *utils.ConflictError
		if utils.IsDuplicateKey(txErr) && !errors.As(txErr, &conflict) {
			s.Logger.WithField("confirmation", reservationID).
				Warnf("confirmation number collision, retrying (attempt %d)", attempt+1)
			time.Sleep(2 * time.Millisecond)
			continue
		}
		return nil, wrapTxErr(txErr)
	}
	if txErr != nil {
		return nil, wrapTxErr(txErr)
	}

	var created models.Reservation
	if err := s.DB.
		Preload("Guest").
		Preload("Rooms").
		Preload("Rooms.Room").
		Preload("Rooms.Room.RoomType").
		First(&created, "id = ?", reservationID).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return &created, nil
}

func (s *ReservationService) createTx(
	tx *gorm.DB,
	actor permissions.Actor,
	branchID uint,
	reservationID string,
	status string,
	input CreateReservationInput,
	assignments []roomAssignment,
) error {
	rooms, err := lockRooms(tx, branchID, assignments)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if err := ensureNoOverlap(tx, a, ""); err != nil {
			return err
		}
	}

	guest, _, err := createOrGetGuestTx(tx, input.Guest, &branchID)
	if err != nil {
		return err
	}

	subtotal := decimal.Zero
	for _, a := range assignments {
		subtotal = subtotal.Add(a.totalAmount)
	}
	subtotal = subtotal.Round(2)

	taxes, err := activeTaxesTx(tx, models.TaxApplicationReservation)
	if err != nil {
		return err
	}
	taxResult := ComputeTaxes(taxes, subtotal)
	finalTotal := subtotal.Add(taxResult.TotalTax).Round(2)

	appliedTaxes, err := json.Marshal(taxResult.Breakdown)
	if err != nil {
		return err
	}

	reservation := models.Reservation{
		ID:           reservationID,
		BranchID:     branchID,
		GuestID:      guest.ID,
		Status:       status,
		TotalAmount:  models.NewMoney(finalTotal),
		TaxAmount:    models.NewMoney(taxResult.TotalTax),
		AppliedTaxes: datatypes.JSON(appliedTaxes),
		Notes:        strings.TrimSpace(input.Notes),
		CreatedByID:  actor.UserID,
	}
	if err := tx.Create(&reservation).Error; err != nil {
		return err
	}

	for _, a := range assignments {
		rr := models.ReservationRoom{
			ReservationID:   reservationID,
			RoomID:          a.roomID,
			CheckInDate:     a.checkIn,
			CheckOutDate:    a.checkOut,
			Adults:          a.adults,
			Children:        a.children,
			RatePerNight:    models.NewMoney(a.ratePerNight),
			TotalAmount:     models.NewMoney(a.totalAmount),
			SpecialRequests: a.specialRequests,
		}
		if err := tx.Create(&rr).Error; err != nil {
			return fmt.Errorf("failed to create reservation room for room %d: %w", a.roomID, err)
		}
	}

	if err := tx.Model(&models.Guest{}).
		Where("id = ?", guest.ID).
		UpdateColumn("reservation_count", gorm.Expr("reservation_count + 1")).Error; err != nil {
		return err
	}

	roomIDs := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		roomIDs = append(roomIDs, r.ID)
	}
	if err := tx.Model(&models.Room{}).
		Where("id IN ?", roomIDs).
		Update("status", models.RoomStatusReserved).Error; err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"reservationId": reservationID,
		"branchId":      branchID,
		"guestId":       guest.ID,
		"guestName":     guest.FullName,
		"status":        status,
		"totalAmount":   models.NewMoney(finalTotal),
		"roomIds":       roomIDs,
	})
	if err := EnqueueOutboxEvent(tx, "reservations", models.EventCreated, payload); err != nil {
		return err
	}
	return nil
}

// lockRooms loads and row-locks every assigned room, so two concurrent
// requests for the same room serialize on the database instead of both
// passing the overlap check.
func lockRooms(tx *gorm.DB, branchID uint, assignments []roomAssignment) ([]models.Room, error) {
	ids := make([]uint, 0, len(assignments))
	seen := map[uint]bool{}
	for _, a := range assignments {
		if !seen[a.roomID] {
			seen[a.roomID] = true
			ids = append(ids, a.roomID)
		}
	}

	var rooms []models.Room
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND branch_id = ? AND is_active = ?", ids, branchID, true).
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	if len(rooms) != len(ids) {
		return nil, &utils.ValidationError{Field: "rooms.roomId", Message: "unknown or inactive room for this branch"}
	}
	for _, r := range rooms {
		if r.Status == models.RoomStatusMaintenance || r.Status == models.RoomStatusOutOfOrder {
			return nil, &utils.ConflictError{Message: fmt.Sprintf("room %s is out of service", r.Number)}
		}
	}
	return rooms, nil
}

// ensureNoOverlap rejects a room assignment whose date range collides
// with any blocking reservation's range for the same room. Stored rows
// keep check_out_date == check_in_date for same-day stays, so the stored
// side is widened to a full night with GREATEST, mirroring blockEnd on
// the incoming side. excludeReservation skips the reservation being
// edited.
func ensureNoOverlap(tx *gorm.DB, a roomAssignment, excludeReservation string) error {
	end := blockEnd(a.checkIn, a.checkOut)
	q := tx.
		Table("reservation_rooms").
		Joins("JOIN reservations ON reservations.id = reservation_rooms.reservation_id").
		Where("reservation_rooms.room_id = ?", a.roomID).
		Where("reservations.status IN ?", blockingReservationStatuses).
		Where("? < GREATEST(reservation_rooms.check_out_date, reservation_rooms.check_in_date + INTERVAL 1 DAY)"+
			" AND reservation_rooms.check_in_date < ?", a.checkIn, end)
	if excludeReservation != "" {
		q = q.Where("reservations.id <> ?", excludeReservation)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &utils.ConflictError{Message: fmt.Sprintf("room %d is already booked for the requested dates", a.roomID)}
	}
	return nil
}

// wrapTxErr keeps typed application errors and wraps everything else as
// a persistence failure.
func wrapTxErr(err error) error {
	var (
		ve *utils.ValidationError
		pe *utils.PermissionError
		ne *utils.NotFoundError
		ee *utils.EditForbiddenError
		ce *utils.ConflictError
	)
	if errors.As(err, &ve) || errors.As(err, &pe) || errors.As(err, &ne) ||
		errors.As(err, &ee) || errors.As(err, &ce) {
		return err
	}
	return &utils.PersistenceError{Err: err}
}

// ---------------------------
// Read
// ---------------------------

func (s *ReservationService) GetByID(actor permissions.Actor, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.DB.
		Preload("Guest").
		Preload("Rooms").
		Preload("Rooms.Room").
		Preload("Rooms.Room.RoomType").
		First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "reservation"}
		}
		return nil, &utils.PersistenceError{Err: err}
	}
	if !permissions.CheckBranchPermissions(actor.Role, actor.BranchID, &reservation.BranchID) {
		return nil, &utils.PermissionError{Message: "not allowed for this branch"}
	}
	return &reservation, nil
}

// List returns reservations newest first, branch-filtered unless the
// actor is superadmin.
func (s *ReservationService) List(actor permissions.Actor, branchID *uint) ([]models.Reservation, error) {
	var list []models.Reservation
	q := s.DB.
		Preload("Guest").
		Preload("Rooms").
		Preload("Rooms.Room").
		Order("created_at DESC")
	if actor.Role != permissions.RoleSuperAdmin {
		q = q.Where("branch_id = ?", derefBranch(actor.BranchID))
	} else if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	for i := range list {
		if list[i].Rooms == nil {
			list[i].Rooms = []models.ReservationRoom{}
		}
	}
	return list, nil
}

// ---------------------------
// Update
// ---------------------------

func (s *ReservationService) Update(actor permissions.Actor, id string, input UpdateReservationInput) (*models.Reservation, error) {
	if !permissions.HasPermission(actor, "reservations", "edit") {
		return nil, &utils.PermissionError{Message: "missing reservations.edit permission"}
	}

	reservation, err := s.GetByID(actor, id)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalReservationStatus(reservation.Status) {
		return nil, &utils.EditForbiddenError{
			Message: fmt.Sprintf("reservation %s is %s and can no longer be edited", id, reservation.Status),
		}
	}

	if input.IsComprehensive() {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			return s.comprehensiveEditTx(tx, reservation, input)
		})
	} else {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			return s.statusEditTx(tx, reservation, input)
		})
	}
	if err != nil {
		return nil, wrapTxErr(err)
	}

	return s.GetByID(actor, id)
}

// comprehensiveEditTx reconciles the full guest/reservation/rooms
// payload. Room lines absent from the input are removed (their rooms
// revert to available), lines carrying an id are updated in place, and
// lines without an id are inserted and their rooms reserved. Removals
// run first, row by row.
func (s *ReservationService) comprehensiveEditTx(tx *gorm.DB, reservation *models.Reservation, input UpdateReservationInput) error {
	if input.Guest != nil && reservation.Guest != nil {
		if err := updateGuestTx(tx, reservation.Guest, *input.Guest); err != nil {
			return err
		}
	}

	if input.Reservation != nil {
		updates := map[string]interface{}{}
		if input.Reservation.Notes != nil {
			updates["notes"] = strings.TrimSpace(*input.Reservation.Notes)
		}
		if input.Reservation.Status != nil {
			if !models.IsValidReservationStatus(*input.Reservation.Status) {
				return &utils.ValidationError{Field: "reservation.status", Message: "unknown status"}
			}
			updates["status"] = *input.Reservation.Status
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
	}

	if input.Rooms != nil {
		if err := s.reconcileRoomsTx(tx, reservation, *input.Rooms); err != nil {
			return err
		}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"reservationId": reservation.ID,
		"branchId":      reservation.BranchID,
	})
	return EnqueueOutboxEvent(tx, "reservations", models.EventUpdated, payload)
}

func (s *ReservationService) reconcileRoomsTx(tx *gorm.DB, reservation *models.Reservation, inputs []RoomAssignmentInput) error {
	assignments := make([]roomAssignment, 0, len(inputs))
	for _, in := range inputs {
		a, err := resolveAssignment(in)
		if err != nil {
			return err
		}
		assignments = append(assignments, a)
	}
	if len(assignments) == 0 {
		return &utils.ValidationError{Field: "rooms", Message: "a reservation must keep at least one room"}
	}

	var existing []models.ReservationRoom
	if err := tx.Where("reservation_id = ?", reservation.ID).Find(&existing).Error; err != nil {
		return err
	}

	keep := map[uint]bool{}
	for _, a := range assignments {
		if a.id != nil {
			keep[*a.id] = true
		}
	}

	// Removals first: delete the junction row, free the room.
	for _, rr := range existing {
		if keep[rr.ID] {
			continue
		}
		if err := tx.Delete(&models.ReservationRoom{}, rr.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Room{}).
			Where("id = ?", rr.RoomID).
			Update("status", models.RoomStatusAvailable).Error; err != nil {
			return err
		}
	}

	existingByID := map[uint]models.ReservationRoom{}
	for _, rr := range existing {
		existingByID[rr.ID] = rr
	}

	// Rooms added or swapped in take the status the reservation's own
	// state implies (a checked-in reservation occupies, not reserves).
	heldStatus := RoomStatusForReservationStatus(reservation.Status)

	for _, a := range assignments {
		if a.id != nil {
			rr, ok := existingByID[*a.id]
			if !ok {
				return &utils.ValidationError{Field: "rooms.id", Message: "unknown reservation room"}
			}
			roomChanged := rr.RoomID != a.roomID
			if roomChanged {
				if _, err := lockRooms(tx, reservation.BranchID, []roomAssignment{a}); err != nil {
					return err
				}
			}
			if roomChanged || !rr.CheckInDate.Equal(a.checkIn) || !rr.CheckOutDate.Equal(a.checkOut) {
				if err := ensureNoOverlap(tx, a, reservation.ID); err != nil {
					return err
				}
			}
			if err := tx.Model(&models.ReservationRoom{}).Where("id = ?", rr.ID).Updates(map[string]interface{}{
				"room_id":          a.roomID,
				"check_in_date":    a.checkIn,
				"check_out_date":   a.checkOut,
				"adults":           a.adults,
				"children":         a.children,
				"rate_per_night":   models.NewMoney(a.ratePerNight),
				"total_amount":     models.NewMoney(a.totalAmount),
				"special_requests": a.specialRequests,
			}).Error; err != nil {
				return err
			}
			if roomChanged {
				// Swap the hold: the replaced room is freed, the new one held.
				if err := tx.Model(&models.Room{}).
					Where("id = ?", rr.RoomID).
					Update("status", models.RoomStatusAvailable).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.Room{}).
					Where("id = ?", a.roomID).
					Update("status", heldStatus).Error; err != nil {
					return err
				}
			}
			continue
		}

		// New line: lock, overlap-check, insert, hold the room.
		if _, err := lockRooms(tx, reservation.BranchID, []roomAssignment{a}); err != nil {
			return err
		}
		if err := ensureNoOverlap(tx, a, reservation.ID); err != nil {
			return err
		}
		rr := models.ReservationRoom{
			ReservationID:   reservation.ID,
			RoomID:          a.roomID,
			CheckInDate:     a.checkIn,
			CheckOutDate:    a.checkOut,
			Adults:          a.adults,
			Children:        a.children,
			RatePerNight:    models.NewMoney(a.ratePerNight),
			TotalAmount:     models.NewMoney(a.totalAmount),
			SpecialRequests: a.specialRequests,
		}
		if err := tx.Create(&rr).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Room{}).
			Where("id = ?", a.roomID).
			Update("status", heldStatus).Error; err != nil {
			return err
		}
	}

	return s.recomputeTotalsTx(tx, reservation)
}

// recomputeTotalsTx re-derives subtotal and totals from the current room
// set. Tax rates come from the snapshot taken at creation time, not from
// the live tax table, so later rate edits never reprice a reservation.
func (s *ReservationService) recomputeTotalsTx(tx *gorm.DB, reservation *models.Reservation) error {
	var rows []models.ReservationRoom
	if err := tx.Where("reservation_id = ?", reservation.ID).Find(&rows).Error; err != nil {
		return err
	}
	subtotal := decimal.Zero
	for _, rr := range rows {
		subtotal = subtotal.Add(rr.TotalAmount.Decimal)
	}
	subtotal = subtotal.Round(2)

	var snapshot []AppliedTax
	if len(reservation.AppliedTaxes) > 0 {
		if err := json.Unmarshal(reservation.AppliedTaxes, &snapshot); err != nil {
			return err
		}
	}
	totalTax := decimal.Zero.Round(2)
	hundred := decimal.NewFromInt(100)
	for i := range snapshot {
		snapshot[i].Amount = models.NewMoney(subtotal.Mul(snapshot[i].Rate).Div(hundred))
		totalTax = totalTax.Add(snapshot[i].Amount.Decimal).Round(2)
	}
	appliedTaxes, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).Updates(map[string]interface{}{
		"total_amount":  models.NewMoney(subtotal.Add(totalTax)),
		"tax_amount":    models.NewMoney(totalTax),
		"applied_taxes": datatypes.JSON(appliedTaxes),
	}).Error
}

// statusEditTx handles the legacy flat payload: update scalar fields and
// cascade a status change to every associated room.
func (s *ReservationService) statusEditTx(tx *gorm.DB, reservation *models.Reservation, input UpdateReservationInput) error {
	updates := map[string]interface{}{}
	if input.Notes != nil {
		updates["notes"] = strings.TrimSpace(*input.Notes)
	}

	statusChanged := false
	newStatus := ""
	if input.Status != nil && *input.Status != reservation.Status {
		newStatus = *input.Status
		if !models.IsValidReservationStatus(newStatus) {
			return &utils.ValidationError{Field: "status", Message: "unknown status"}
		}
		statusChanged = true
		updates["status"] = newStatus
	}
	if len(updates) == 0 {
		return nil
	}
	if err := tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).Updates(updates).Error; err != nil {
		return err
	}
	if !statusChanged {
		return nil
	}

	roomStatus := RoomStatusForReservationStatus(newStatus)
	now := time.Now().UTC()

	var roomIDs []uint
	if err := tx.Model(&models.ReservationRoom{}).
		Where("reservation_id = ?", reservation.ID).
		Pluck("room_id", &roomIDs).Error; err != nil {
		return err
	}
	if len(roomIDs) > 0 {
		if err := tx.Model(&models.Room{}).
			Where("id IN ?", roomIDs).
			Update("status", roomStatus).Error; err != nil {
			return err
		}
	}

	eventKind := models.EventUpdated
	switch newStatus {
	case models.ReservationStatusCheckedIn:
		eventKind = models.EventCheckIn
		if err := tx.Model(&models.ReservationRoom{}).
			Where("reservation_id = ?", reservation.ID).
			Update("actual_check_in", now).Error; err != nil {
			return err
		}
	case models.ReservationStatusCheckedOut:
		eventKind = models.EventCheckOut
		if err := tx.Model(&models.ReservationRoom{}).
			Where("reservation_id = ?", reservation.ID).
			Update("actual_check_out", now).Error; err != nil {
			return err
		}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"reservationId": reservation.ID,
		"branchId":      reservation.BranchID,
		"guestId":       reservation.GuestID,
		"status":        newStatus,
		"roomIds":       roomIDs,
	})
	if err := EnqueueOutboxEvent(tx, "reservations", eventKind, payload); err != nil {
		return err
	}
	roomPayload, _ := json.Marshal(map[string]interface{}{
		"roomIds": roomIDs,
		"status":  roomStatus,
	})
	return EnqueueOutboxEvent(tx, "rooms", models.EventUpdated, roomPayload)
}

// ---------------------------
// Cancel
// ---------------------------

// Cancel flips the reservation to cancelled and frees its rooms. The
// row is retained for history; there is no hard-delete path.
func (s *ReservationService) Cancel(actor permissions.Actor, id string) (*models.Reservation, error) {
	if !permissions.HasPermission(actor, "reservations", "delete") {
		return nil, &utils.PermissionError{Message: "missing reservations.delete permission"}
	}
	reservation, err := s.GetByID(actor, id)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalReservationStatus(reservation.Status) {
		return nil, &utils.EditForbiddenError{
			Message: fmt.Sprintf("reservation %s is %s and can no longer be cancelled", id, reservation.Status),
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Reservation{}).
			Where("id = ?", reservation.ID).
			Update("status", models.ReservationStatusCancelled).Error; err != nil {
			return err
		}

		var roomIDs []uint
		if err := tx.Model(&models.ReservationRoom{}).
			Where("reservation_id = ?", reservation.ID).
			Pluck("room_id", &roomIDs).Error; err != nil {
			return err
		}
		if len(roomIDs) > 0 {
			if err := tx.Model(&models.Room{}).
				Where("id IN ?", roomIDs).
				Update("status", models.RoomStatusAvailable).Error; err != nil {
				return err
			}
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"reservationId": reservation.ID,
			"branchId":      reservation.BranchID,
			"guestId":       reservation.GuestID,
			"roomIds":       roomIDs,
		})
		if err := EnqueueOutboxEvent(tx, "reservations", models.EventCancelled, payload); err != nil {
			return err
		}
		roomPayload, _ := json.Marshal(map[string]interface{}{
			"roomIds": roomIDs,
			"status":  models.RoomStatusAvailable,
		})
		return EnqueueOutboxEvent(tx, "rooms", models.EventUpdated, roomPayload)
	})
	if err != nil {
		return nil, wrapTxErr(err)
	}

	return s.GetByID(actor, id)
}
