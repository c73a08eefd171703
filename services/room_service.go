package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"hms-backend/models"
	"hms-backend/permissions"
	"hms-backend/utils"

	"gorm.io/gorm"
)

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

// reservation statuses that still hold their rooms against new bookings
var blockingReservationStatuses = []string{
	models.ReservationStatusPending,
	models.ReservationStatusConfirmed,
	models.ReservationStatusCheckedIn,
}

func (s *RoomService) List(actor permissions.Actor, branchID *uint) ([]models.Room, error) {
	var rooms []models.Room
	q := s.DB.Preload("RoomType").Where("is_active = ?", true)
	if actor.Role != permissions.RoleSuperAdmin {
		q = q.Where("branch_id = ?", derefBranch(actor.BranchID))
	} else if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	if err := q.Order("number ASC").Find(&rooms).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return rooms, nil
}

func derefBranch(b *uint) uint {
	if b == nil {
		return 0
	}
	return *b
}

func (s *RoomService) Create(actor permissions.Actor, room *models.Room) error {
	if !permissions.CheckBranchPermissions(actor.Role, actor.BranchID, &room.BranchID) {
		return &utils.PermissionError{Message: "not allowed for this branch"}
	}
	room.Number = strings.TrimSpace(room.Number)
	if room.Number == "" {
		return &utils.ValidationError{Field: "number", Message: "is required"}
	}
	if room.Status == "" {
		room.Status = models.RoomStatusAvailable
	}
	if !models.IsValidRoomStatus(room.Status) {
		return &utils.ValidationError{Field: "status", Message: "unknown room status"}
	}

	// Room type must be global or belong to the room's branch.
	var rt models.RoomType
	if err := s.DB.First(&rt, room.RoomTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.ValidationError{Field: "roomTypeId", Message: "unknown room type"}
		}
		return &utils.PersistenceError{Err: err}
	}
	if rt.BranchID != nil && *rt.BranchID != room.BranchID {
		return &utils.ValidationError{Field: "roomTypeId", Message: "room type belongs to another branch"}
	}

	if err := s.DB.Create(room).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return &utils.ConflictError{Message: "room number already exists in this branch"}
		}
		return &utils.PersistenceError{Err: err}
	}
	return nil
}

// RoomUpdateInput carries optional field updates; nil means unchanged.
// A status change here is the direct administrative edit path: it
// touches no reservation and may set any valid status.
type RoomUpdateInput struct {
	Number       *string `json:"number"`
	Floor        *string `json:"floor"`
	RoomTypeID   *uint   `json:"roomTypeId"`
	Status       *string `json:"status"`
	RatePerNight *string `json:"ratePerNight"`
}

func (s *RoomService) Update(actor permissions.Actor, id uint, input RoomUpdateInput) (*models.Room, error) {
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "room"}
		}
		return nil, &utils.PersistenceError{Err: err}
	}
	if !permissions.CheckBranchPermissions(actor.Role, actor.BranchID, &room.BranchID) {
		return nil, &utils.PermissionError{Message: "not allowed for this branch"}
	}

	updates := map[string]interface{}{}
	if input.Number != nil && strings.TrimSpace(*input.Number) != "" {
		updates["number"] = strings.TrimSpace(*input.Number)
	}
	if input.Floor != nil {
		updates["floor"] = strings.TrimSpace(*input.Floor)
	}
	if input.RoomTypeID != nil {
		updates["room_type_id"] = *input.RoomTypeID
	}
	if input.RatePerNight != nil {
		rate, err := parseMoney(*input.RatePerNight)
		if err != nil {
			return nil, &utils.ValidationError{Field: "ratePerNight", Message: "invalid amount"}
		}
		updates["rate_per_night"] = models.NewMoney(rate)
	}

	statusChanged := false
	newStatus := ""
	if input.Status != nil {
		newStatus = *input.Status
		if !models.IsValidRoomStatus(newStatus) {
			return nil, &utils.ValidationError{Field: "status", Message: "unknown room status"}
		}
		statusChanged = newStatus != room.Status
		updates["status"] = newStatus
	}
	if len(updates) == 0 {
		return &room, nil
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&room).Updates(updates).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return &utils.ConflictError{Message: "room number already exists in this branch"}
			}
			return &utils.PersistenceError{Err: err}
		}
		// Taking a room out of service notifies housekeeping/maintenance.
		if statusChanged && (newStatus == models.RoomStatusMaintenance || newStatus == models.RoomStatusOutOfOrder) {
			payload, _ := json.Marshal(map[string]interface{}{
				"roomId":   room.ID,
				"branchId": room.BranchID,
				"number":   room.Number,
				"status":   newStatus,
				"at":       time.Now().UTC(),
			})
			if err := EnqueueOutboxEvent(tx, "rooms", models.EventMaintenance, payload); err != nil {
				return &utils.PersistenceError{Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Deactivate soft-deletes; no hard-delete path exists for rooms.
func (s *RoomService) Deactivate(actor permissions.Actor, id uint) error {
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.NotFoundError{Resource: "room"}
		}
		return &utils.PersistenceError{Err: err}
	}
	if !permissions.CheckBranchPermissions(actor.Role, actor.BranchID, &room.BranchID) {
		return &utils.PermissionError{Message: "not allowed for this branch"}
	}
	if err := s.DB.Model(&room).Update("is_active", false).Error; err != nil {
		return &utils.PersistenceError{Err: err}
	}
	return nil
}

// GetAvailableRooms returns active rooms in the branch that are in
// service and whose reservation-room ranges do not overlap [checkIn,
// checkOut). Two ranges [a,b) and [c,d) conflict iff a < d && c < b.
// Stored same-day rows (check_out_date == check_in_date) are widened to
// a full night with GREATEST, matching the overlap check on booking.
func (s *RoomService) GetAvailableRooms(branchID uint, checkIn, checkOut time.Time) ([]models.Room, error) {
	busy := s.DB.
		Table("reservation_rooms").
		Select("reservation_rooms.room_id").
		Joins("JOIN reservations ON reservations.id = reservation_rooms.reservation_id").
		Where("reservations.status IN ?", blockingReservationStatuses).
		Where("? < GREATEST(reservation_rooms.check_out_date, reservation_rooms.check_in_date + INTERVAL 1 DAY)"+
			" AND reservation_rooms.check_in_date < ?", checkIn, checkOut)

	var rooms []models.Room
	err := s.DB.
		Preload("RoomType").
		Where("branch_id = ? AND is_active = ?", branchID, true).
		Where("status NOT IN ?", []string{models.RoomStatusMaintenance, models.RoomStatusOutOfOrder}).
		Where("id NOT IN (?)", busy).
		Order("number ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return rooms, nil
}
