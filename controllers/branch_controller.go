package controllers

import (
	"net/http"

	"hms-backend/models"
	"hms-backend/permissions"
	"hms-backend/services"
	"hms-backend/utils"

	"github.com/gin-gonic/gin"
)

type BranchController struct {
	Svc *services.BranchService
}

func NewBranchController(svc *services.BranchService) *BranchController {
	return &BranchController{Svc: svc}
}

// GetBranches handles GET /api/branches.
func (bc *BranchController) GetBranches(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !permissions.HasPermission(actor, "branches", "view") {
		utils.JSONError(c, http.StatusForbidden, "missing branches.view permission")
		return
	}
	branches, err := bc.Svc.GetAll()
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, branches)
}

// GetBranch handles GET /api/branches/:id.
func (bc *BranchController) GetBranch(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	branch, err := bc.Svc.GetByID(id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, branch)
}

// CreateBranch handles POST /api/branches. Only superadmin manages
// branches.
func (bc *BranchController) CreateBranch(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if actor.Role != permissions.RoleSuperAdmin {
		utils.JSONError(c, http.StatusForbidden, "only superadmin may manage branches")
		return
	}
	var branch models.Branch
	if err := c.ShouldBindJSON(&branch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	if err := bc.Svc.Create(&branch); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, branch)
}

// UpdateBranch handles PUT /api/branches/:id.
func (bc *BranchController) UpdateBranch(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if actor.Role != permissions.RoleSuperAdmin {
		utils.JSONError(c, http.StatusForbidden, "only superadmin may manage branches")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var input services.BranchUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	branch, err := bc.Svc.Update(id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, branch)
}

// DeleteBranch handles DELETE /api/branches/:id. Two-phase: the first
// call deactivates, a second call on the inactive branch removes it.
func (bc *BranchController) DeleteBranch(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if actor.Role != permissions.RoleSuperAdmin {
		utils.JSONError(c, http.StatusForbidden, "only superadmin may manage branches")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	action, err := bc.Svc.Delete(id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"action": action})
}
