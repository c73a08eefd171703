package services

import (
	"errors"
	"strings"

	"hms-backend/models"
	"hms-backend/utils"

	"gorm.io/gorm"
)

type GuestService struct {
	DB *gorm.DB
}

func NewGuestService(db *gorm.DB) *GuestService {
	return &GuestService{DB: db}
}

// GuestInput is the creation payload, shared with the reservation
// orchestrator's implicit guest creation path.
type GuestInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email"`
	Nationality string `json:"nationality"`
}

// FindByPhone looks a guest up by the normalized phone key. Returns
// (nil, nil) when no active guest matches.
func (s *GuestService) FindByPhone(phone string) (*models.Guest, error) {
	return findGuestByPhoneTx(s.DB, phone)
}

func findGuestByPhoneTx(tx *gorm.DB, phone string) (*models.Guest, error) {
	key := utils.NormalizePhone(phone)
	if key == "" {
		return nil, nil
	}
	var guest models.Guest
	err := tx.Where("phone_key = ? AND is_active = ?", key, true).First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return &guest, nil
}

// Create validates and inserts a new guest. A duplicate phone is not a
// hard failure: the existing guest is returned instead, so repeated
// creation with the same number stays idempotent.
func (s *GuestService) Create(input GuestInput, branchID *uint) (*models.Guest, error) {
	guest, _, err := createOrGetGuestTx(s.DB, input, branchID)
	return guest, err
}

func createOrGetGuestTx(tx *gorm.DB, input GuestInput, branchID *uint) (*models.Guest, bool, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, false, &utils.ValidationError{Field: "fullName", Message: "is required"}
	}
	if err := utils.ValidatePhone(input.Phone); err != nil {
		return nil, false, &utils.ValidationError{Field: "phone", Message: err.Error()}
	}

	if existing, err := findGuestByPhoneTx(tx, input.Phone); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, false, nil
	}

	// A deactivated guest still owns the phone key's unique index;
	// reactivate that record instead of colliding with it.
	if dormant, err := reactivateGuestByPhoneTx(tx, input); err != nil {
		return nil, false, err
	} else if dormant != nil {
		return dormant, false, nil
	}

	guest := models.Guest{
		FullName:    strings.TrimSpace(input.FullName),
		Phone:       strings.TrimSpace(input.Phone),
		PhoneKey:    utils.NormalizePhone(input.Phone),
		Email:       strings.TrimSpace(input.Email),
		Nationality: strings.TrimSpace(input.Nationality),
		BranchID:    branchID,
	}
	if err := tx.Create(&guest).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			// Lost a race with a concurrent insert; surface the winner.
			if existing, ferr := findGuestByPhoneTx(tx, input.Phone); ferr == nil && existing != nil {
				return existing, false, nil
			}
			if dormant, ferr := reactivateGuestByPhoneTx(tx, input); ferr == nil && dormant != nil {
				return dormant, false, nil
			}
			return nil, false, &utils.ConflictError{Message: "guest with this phone already exists"}
		}
		return nil, false, &utils.PersistenceError{Err: err}
	}
	return &guest, true, nil
}

// reactivateGuestByPhoneTx revives a soft-deleted guest holding the
// phone key, refreshing its details from the new input. Returns
// (nil, nil) when no deactivated record holds the key.
func reactivateGuestByPhoneTx(tx *gorm.DB, input GuestInput) (*models.Guest, error) {
	key := utils.NormalizePhone(input.Phone)
	var guest models.Guest
	err := tx.Where("phone_key = ? AND is_active = ?", key, false).First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}

	updates := map[string]interface{}{
		"is_active": true,
		"full_name": strings.TrimSpace(input.FullName),
		"phone":     strings.TrimSpace(input.Phone),
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		updates["email"] = email
	}
	if nat := strings.TrimSpace(input.Nationality); nat != "" {
		updates["nationality"] = nat
	}
	if err := tx.Model(&guest).Updates(updates).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return &guest, nil
}

// Search does a case-insensitive substring match over name, phone and
// email. Global (not branch-filtered), capped at 10, most recent first.
func (s *GuestService) Search(query string) ([]models.Guest, error) {
	var guests []models.Guest
	q := s.DB.Where("is_active = ?", true)
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		like := "%" + strings.ToLower(trimmed) + "%"
		q = q.Where(
			"LOWER(full_name) LIKE ? OR phone_key LIKE ? OR LOWER(email) LIKE ?",
			like, "%"+utils.NormalizePhone(trimmed)+"%", like,
		)
	}
	if err := q.Order("id DESC").Limit(10).Find(&guests).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return guests, nil
}

func (s *GuestService) GetByID(id uint) (*models.Guest, error) {
	var guest models.Guest
	if err := s.DB.First(&guest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "guest"}
		}
		return nil, &utils.PersistenceError{Err: err}
	}
	return &guest, nil
}

// GuestUpdateInput carries optional field updates; nil means unchanged.
type GuestUpdateInput struct {
	FullName    *string `json:"fullName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Nationality *string `json:"nationality"`
}

func (s *GuestService) Update(id uint, input GuestUpdateInput) (*models.Guest, error) {
	guest, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := updateGuestTx(s.DB, guest, input); err != nil {
		return nil, err
	}
	return guest, nil
}

func updateGuestTx(tx *gorm.DB, guest *models.Guest, input GuestUpdateInput) error {
	updates := map[string]interface{}{}
	if input.FullName != nil && strings.TrimSpace(*input.FullName) != "" {
		updates["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Phone != nil && strings.TrimSpace(*input.Phone) != "" {
		if err := utils.ValidatePhone(*input.Phone); err != nil {
			return &utils.ValidationError{Field: "phone", Message: err.Error()}
		}
		updates["phone"] = strings.TrimSpace(*input.Phone)
		updates["phone_key"] = utils.NormalizePhone(*input.Phone)
	}
	if input.Email != nil {
		updates["email"] = strings.TrimSpace(*input.Email)
	}
	if input.Nationality != nil {
		updates["nationality"] = strings.TrimSpace(*input.Nationality)
	}
	if len(updates) == 0 {
		return nil
	}
	if err := tx.Model(guest).Updates(updates).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return &utils.ConflictError{Message: "another guest already uses this phone"}
		}
		return &utils.PersistenceError{Err: err}
	}
	return nil
}

// Deactivate soft-deletes; guests are never hard-deleted.
func (s *GuestService) Deactivate(id uint) error {
	res := s.DB.Model(&models.Guest{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return &utils.PersistenceError{Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &utils.NotFoundError{Resource: "guest"}
	}
	return nil
}
