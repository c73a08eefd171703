package controllers

import (
	"net/http"
	"strconv"

	"hms-backend/middleware"
	"hms-backend/permissions"
	"hms-backend/services"
	"hms-backend/utils"

	"github.com/gin-gonic/gin"
)

type ReservationController struct {
	Svc *services.ReservationService
}

func NewReservationController(svc *services.ReservationService) *ReservationController {
	return &ReservationController{Svc: svc}
}

func requireActor(c *gin.Context) (permissions.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "missing authentication context")
		return permissions.Actor{}, false
	}
	return actor, true
}

// CreateReservation handles POST /api/reservations.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var input services.CreateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	reservation, err := rc.Svc.Create(actor, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, reservation)
}

// GetReservations handles GET /api/reservations, branch-filtered unless
// the caller is superadmin.
func (rc *ReservationController) GetReservations(c *gin.Context) {
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

	list, err := rc.Svc.List(actor, branchFilter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GetReservation handles GET /api/reservations/:id.
func (rc *ReservationController) GetReservation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	reservation, err := rc.Svc.GetByID(actor, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reservation)
}

// UpdateReservation handles PATCH /api/reservations/:id. The service
// treats payloads carrying guest/reservation/rooms keys as a
// comprehensive edit and flat bodies as the legacy status-only shape.
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var input services.UpdateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	reservation, err := rc.Svc.Update(actor, c.Param("id"), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reservation)
}

// CancelReservation handles DELETE /api/reservations/:id. Soft cancel,
// the row is kept for audit.
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	reservation, err := rc.Svc.Cancel(actor, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reservation)
}
