package controllers

import (
	"net/http"
	"strconv"
	"time"

	"hms-backend/models"
	"hms-backend/permissions"
	"hms-backend/services"
	"hms-backend/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	Svc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{Svc: svc}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// GetRooms handles GET /api/rooms.
func (rc *RoomController) GetRooms(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var branchFilter *uint
	if raw := c.Query("branchId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid branchId")
			return
		}
		b := uint(id)
		branchFilter = &b
	}
	rooms, err := rc.Svc.List(actor, branchFilter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// CreateRoom handles POST /api/rooms.
func (rc *RoomController) CreateRoom(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "rooms", "create") {
		utils.JSONError(c, http.StatusForbidden, "missing rooms.create permission")
		return
	}

	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	if err := rc.Svc.Create(actor, &room); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// UpdateRoom handles PATCH /api/rooms/:id, including the direct
// administrative status edit (e.g. marking a room under maintenance).
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "rooms", "edit") {
		utils.JSONError(c, http.StatusForbidden, "missing rooms.edit permission")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var input services.RoomUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	room, err := rc.Svc.Update(actor, id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/rooms/:id (soft delete only).
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "rooms", "delete") {
		utils.JSONError(c, http.StatusForbidden, "missing rooms.delete permission")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := rc.Svc.Deactivate(actor, id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"action": "deactivated"})
}

// GetAvailability handles GET /api/rooms/availability.
func (rc *RoomController) GetAvailability(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	branchRaw := c.Query("branchId")
	branchID64, err := strconv.ParseUint(branchRaw, 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "branchId is required")
		return
	}
	branchID := uint(branchID64)
	if !permissions.CheckBranchPermissions(actor.Role, actor.BranchID, &branchID) {
		utils.JSONError(c, http.StatusForbidden, "not allowed for this branch")
		return
	}

	checkIn, err := time.Parse("2006-01-02", c.Query("checkIn"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "checkIn must be YYYY-MM-DD")
		return
	}
	checkOut, err := time.Parse("2006-01-02", c.Query("checkOut"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "checkOut must be YYYY-MM-DD")
		return
	}
	if checkOut.Before(checkIn) {
		utils.JSONError(c, http.StatusBadRequest, "checkOut must not be before checkIn")
		return
	}

	rooms, err := rc.Svc.GetAvailableRooms(branchID, checkIn, checkOut)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}
