package services

import (
	"errors"
	"strings"

	"hms-backend/models"
	"hms-backend/utils"

	"gorm.io/gorm"
)

type BranchService struct {
	DB *gorm.DB
}

func NewBranchService(db *gorm.DB) *BranchService {
	return &BranchService{DB: db}
}

// Delete actions reported to the client.
const (
	BranchDeleteDeactivated = "deactivated"
	BranchDeleteDeleted     = "deleted"
)

func (s *BranchService) GetAll() ([]models.Branch, error) {
	var branches []models.Branch
	if err := s.DB.Order("id ASC").Find(&branches).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return branches, nil
}

func (s *BranchService) GetByID(id uint) (*models.Branch, error) {
	var branch models.Branch
	if err := s.DB.First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "branch"}
		}
		return nil, &utils.PersistenceError{Err: err}
	}
	return &branch, nil
}

func (s *BranchService) Create(branch *models.Branch) error {
	branch.Name = strings.TrimSpace(branch.Name)
	if branch.Name == "" {
		return &utils.ValidationError{Field: "name", Message: "is required"}
	}
	if err := s.DB.Create(branch).Error; err != nil {
		return &utils.PersistenceError{Err: err}
	}
	return nil
}

// BranchUpdateInput carries optional field updates; nil means unchanged.
type BranchUpdateInput struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"isActive"`
}

func (s *BranchService) Update(id uint, input BranchUpdateInput) (*models.Branch, error) {
	branch, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return branch, nil
	}
	if err := s.DB.Model(branch).Updates(updates).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return branch, nil
}

// Delete is two-phase: the first call on an active branch only
// deactivates it, keeping all child data; a second call on the already
// inactive branch hard-deletes the row.
func (s *BranchService) Delete(id uint) (string, error) {
	branch, err := s.GetByID(id)
	if err != nil {
		return "", err
	}
	if branch.IsActive == nil || *branch.IsActive {
		if err := s.DB.Model(branch).Update("is_active", false).Error; err != nil {
			return "", &utils.PersistenceError{Err: err}
		}
		return BranchDeleteDeactivated, nil
	}
	if err := s.DB.Delete(&models.Branch{}, id).Error; err != nil {
		return "", &utils.PersistenceError{Err: err}
	}
	return BranchDeleteDeleted, nil
}
