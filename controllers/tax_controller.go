package controllers

import (
	"net/http"

	"hms-backend/models"
	"hms-backend/permissions"
	"hms-backend/services"
	"hms-backend/utils"

	"github.com/gin-gonic/gin"
)

type TaxController struct {
	Svc *services.TaxService
}

func NewTaxController(svc *services.TaxService) *TaxController {
	return &TaxController{Svc: svc}
}

// GetReservationTaxes handles GET /api/taxes/reservation: the active
// taxes the orchestrator would apply to a reservation right now.
func (tc *TaxController) GetReservationTaxes(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	taxes, err := tc.Svc.ActiveTaxes(models.TaxApplicationReservation)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, taxes)
}

// GetTaxes handles GET /api/taxes.
func (tc *TaxController) GetTaxes(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	taxes, err := tc.Svc.GetAll()
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, taxes)
}

// CreateTax handles POST /api/taxes. Tax administration is not
// branch-scoped, so the custom tier stays read-only here.
func (tc *TaxController) CreateTax(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "taxes", "create") {
		utils.JSONError(c, http.StatusForbidden, "missing taxes.create permission")
		return
	}
	var tax models.Tax
	if err := c.ShouldBindJSON(&tax); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	if err := tc.Svc.Create(&tax); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, tax)
}

// UpdateTax handles PUT /api/taxes/:id. Rate changes only affect future
// reservations; existing ones keep their snapshot.
func (tc *TaxController) UpdateTax(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "taxes", "edit") {
		utils.JSONError(c, http.StatusForbidden, "missing taxes.edit permission")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var input services.TaxUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	tax, err := tc.Svc.Update(id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, tax)
}

// DeleteTax handles DELETE /api/taxes/:id (soft delete only).
func (tc *TaxController) DeleteTax(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "taxes", "delete") {
		utils.JSONError(c, http.StatusForbidden, "missing taxes.delete permission")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := tc.Svc.Deactivate(id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"action": "deactivated"})
}
