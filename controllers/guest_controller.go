package controllers

import (
	"net/http"

	"hms-backend/permissions"
	"hms-backend/services"
	"hms-backend/utils"

	"github.com/gin-gonic/gin"
)

type GuestController struct {
	Svc *services.GuestService
}

func NewGuestController(svc *services.GuestService) *GuestController {
	return &GuestController{Svc: svc}
}

// GetGuests handles GET /api/guests?q=. Search is global across
// branches, capped at 10 results, most recent first.
func (gc *GuestController) GetGuests(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "guests", "view") {
		utils.JSONError(c, http.StatusForbidden, "missing guests.view permission")
		return
	}
	guests, err := gc.Svc.Search(c.Query("q"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guests)
}

// GetGuestByID handles GET /api/guests/:id.
func (gc *GuestController) GetGuestByID(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "guests", "view") {
		utils.JSONError(c, http.StatusForbidden, "missing guests.view permission")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	guest, err := gc.Svc.GetByID(id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guest)
}

// CreateGuest handles POST /api/guests. A duplicate phone returns the
// existing guest (200) rather than failing.
func (gc *GuestController) CreateGuest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "guests", "create") {
		utils.JSONError(c, http.StatusForbidden, "missing guests.create permission")
		return
	}
	var input services.GuestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	guest, err := gc.Svc.Create(input, actor.BranchID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, guest)
}

// UpdateGuest handles PUT /api/guests/:id.
func (gc *GuestController) UpdateGuest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "guests", "edit") {
		utils.JSONError(c, http.StatusForbidden, "missing guests.edit permission")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var input services.GuestUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	guest, err := gc.Svc.Update(id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guest)
}

// DeleteGuest handles DELETE /api/guests/:id. Soft delete only; guests
// are referenced by historical reservations.
func (gc *GuestController) DeleteGuest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if actor.Role == permissions.RoleCustom {
		utils.JSONError(c, http.StatusForbidden, "missing guests.delete permission")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := gc.Svc.Deactivate(id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"action": "deactivated"})
}
