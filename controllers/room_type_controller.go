package controllers

import (
	"net/http"

	"hms-backend/models"
	"hms-backend/permissions"
	"hms-backend/services"
	"hms-backend/utils"

	"github.com/gin-gonic/gin"
)

type RoomTypeController struct {
	Svc *services.RoomTypeService
}

func NewRoomTypeController(svc *services.RoomTypeService) *RoomTypeController {
	return &RoomTypeController{Svc: svc}
}

// GetRoomTypes handles GET /api/room-types.
func (rtc *RoomTypeController) GetRoomTypes(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	types, err := rtc.Svc.List(actor)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}

// CreateRoomType handles POST /api/room-types.
func (rtc *RoomTypeController) CreateRoomType(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "roomTypes", "create") {
		utils.JSONError(c, http.StatusForbidden, "missing roomTypes.create permission")
		return
	}
	var rt models.RoomType
	if err := c.ShouldBindJSON(&rt); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	if err := rtc.Svc.Create(actor, &rt); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, rt)
}

// UpdateRoomType handles PUT /api/room-types/:id.
func (rtc *RoomTypeController) UpdateRoomType(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "roomTypes", "edit") {
		utils.JSONError(c, http.StatusForbidden, "missing roomTypes.edit permission")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var input services.RoomTypeUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	rt, err := rtc.Svc.Update(actor, id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rt)
}

// DeleteRoomType handles DELETE /api/room-types/:id (soft delete only).
func (rtc *RoomTypeController) DeleteRoomType(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "roomTypes", "delete") {
		utils.JSONError(c, http.StatusForbidden, "missing roomTypes.delete permission")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := rtc.Svc.Deactivate(actor, id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"action": "deactivated"})
}
