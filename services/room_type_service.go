package services

import (
	"errors"
	"strings"

	"hms-backend/models"
	"hms-backend/permissions"
	"hms-backend/utils"

	"gorm.io/gorm"
)

type RoomTypeService struct {
	DB *gorm.DB
}

func NewRoomTypeService(db *gorm.DB) *RoomTypeService {
	return &RoomTypeService{DB: db}
}

// List returns active room types visible to the actor's branch: global
// ones (no branch) plus branch-specific ones.
func (s *RoomTypeService) List(actor permissions.Actor) ([]models.RoomType, error) {
	var types []models.RoomType
	q := s.DB.Where("is_active = ?", true)
	if actor.Role != permissions.RoleSuperAdmin && actor.BranchID != nil {
		q = q.Where("branch_id IS NULL OR branch_id = ?", *actor.BranchID)
	}
	if err := q.Order("id ASC").Find(&types).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return types, nil
}

func (s *RoomTypeService) Create(actor permissions.Actor, rt *models.RoomType) error {
	rt.Name = strings.TrimSpace(rt.Name)
	if rt.Name == "" {
		return &utils.ValidationError{Field: "name", Message: "is required"}
	}
	// Only superadmin may create global types.
	if rt.BranchID == nil && actor.Role != permissions.RoleSuperAdmin {
		rt.BranchID = actor.BranchID
	}
	if rt.BranchID != nil && !permissions.CheckBranchPermissions(actor.Role, actor.BranchID, rt.BranchID) {
		return &utils.PermissionError{Message: "not allowed for this branch"}
	}
	if err := s.DB.Create(rt).Error; err != nil {
		return &utils.PersistenceError{Err: err}
	}
	return nil
}

// RoomTypeUpdateInput carries optional field updates; nil means unchanged.
type RoomTypeUpdateInput struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	MaxOccupancy *int    `json:"maxOccupancy"`
}

func (s *RoomTypeService) Update(actor permissions.Actor, id uint, input RoomTypeUpdateInput) (*models.RoomType, error) {
	var rt models.RoomType
	if err := s.DB.First(&rt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "room type"}
		}
		return nil, &utils.PersistenceError{Err: err}
	}
	if !permissions.CheckBranchPermissions(actor.Role, actor.BranchID, rt.BranchID) {
		return nil, &utils.PermissionError{Message: "not allowed for this branch"}
	}
	updates := map[string]interface{}{}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.MaxOccupancy != nil && *input.MaxOccupancy > 0 {
		updates["max_occupancy"] = *input.MaxOccupancy
	}
	if len(updates) == 0 {
		return &rt, nil
	}
	if err := s.DB.Model(&rt).Updates(updates).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return &rt, nil
}

// Deactivate soft-deletes; no hard-delete path exists for room types.
func (s *RoomTypeService) Deactivate(actor permissions.Actor, id uint) error {
	var rt models.RoomType
	if err := s.DB.First(&rt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.NotFoundError{Resource: "room type"}
		}
		return &utils.PersistenceError{Err: err}
	}
	if !permissions.CheckBranchPermissions(actor.Role, actor.BranchID, rt.BranchID) {
		return &utils.PermissionError{Message: "not allowed for this branch"}
	}
	if err := s.DB.Model(&rt).Update("is_active", false).Error; err != nil {
		return &utils.PersistenceError{Err: err}
	}
	return nil
}
