package services

import (
	"errors"
	"fmt"

	"hms-backend/models"
	"hms-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppliedTax is one line of a tax breakdown. The slice is snapshotted
// into the reservation as JSON at creation time.
type AppliedTax struct {
	TaxID  uint            `json:"taxId"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount models.Money    `json:"amount"`
}

type TaxResult struct {
	TotalTax  decimal.Decimal `json:"totalTax"`
	Breakdown []AppliedTax    `json:"breakdown"`
}

type TaxService struct {
	DB *gorm.DB
}

func NewTaxService(db *gorm.DB) *TaxService {
	return &TaxService{DB: db}
}

// ComputeTaxes applies each tax to the subtotal, rounding every line to
// two decimal places. Breakdown order follows the input order. An empty
// tax set yields a zero total and an empty breakdown, never an error.
func ComputeTaxes(taxes []models.Tax, subtotal decimal.Decimal) TaxResult {
	result := TaxResult{
		TotalTax:  decimal.Zero.Round(2),
		Breakdown: []AppliedTax{},
	}
	hundred := decimal.NewFromInt(100)
	for _, t := range taxes {
		amount := subtotal.Mul(t.Rate).Div(hundred).Round(2)
		result.Breakdown = append(result.Breakdown, AppliedTax{
			TaxID:  t.ID,
			Name:   t.TaxName,
			Rate:   t.Rate,
			Amount: models.NewMoney(amount),
		})
		result.TotalTax = result.TotalTax.Add(amount).Round(2)
	}
	return result
}

// ActiveTaxes returns active taxes for an application type in a stable
// id order, so the snapshotted breakdown displays consistently.
func (s *TaxService) ActiveTaxes(applicationType string) ([]models.Tax, error) {
	return activeTaxesTx(s.DB, applicationType)
}

func activeTaxesTx(tx *gorm.DB, applicationType string) ([]models.Tax, error) {
	var taxes []models.Tax
	if err := tx.
		Where("application_type = ? AND is_active = ?", applicationType, true).
		Order("id ASC").
		Find(&taxes).Error; err != nil {
		return nil, fmt.Errorf("failed to load taxes: %w", err)
	}
	return taxes, nil
}

func (s *TaxService) GetAll() ([]models.Tax, error) {
	var taxes []models.Tax
	if err := s.DB.Order("id ASC").Find(&taxes).Error; err != nil {
		return nil, fmt.Errorf("failed to load taxes: %w", err)
	}
	return taxes, nil
}

func (s *TaxService) Create(tax *models.Tax) error {
	if tax.TaxName == "" {
		return &utils.ValidationError{Field: "taxName", Message: "is required"}
	}
	if !models.IsValidTaxApplication(tax.ApplicationType) {
		return &utils.ValidationError{Field: "applicationType", Message: "must be reservation or order"}
	}
	if tax.Rate.IsNegative() {
		return &utils.ValidationError{Field: "rate", Message: "must not be negative"}
	}
	if err := s.DB.Create(tax).Error; err != nil {
		return &utils.PersistenceError{Err: err}
	}
	return nil
}

// TaxUpdateInput carries optional field updates; nil means unchanged.
type TaxUpdateInput struct {
	TaxName         *string          `json:"taxName"`
	Rate            *decimal.Decimal `json:"rate"`
	ApplicationType *string          `json:"applicationType"`
	IsActive        *bool            `json:"isActive"`
}

func (s *TaxService) Update(id uint, input TaxUpdateInput) (*models.Tax, error) {
	var tax models.Tax
	if err := s.DB.First(&tax, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "tax"}
		}
		return nil, &utils.PersistenceError{Err: err}
	}

	updates := map[string]interface{}{}
	if input.TaxName != nil {
		updates["tax_name"] = *input.TaxName
	}
	if input.Rate != nil {
		if input.Rate.IsNegative() {
			return nil, &utils.ValidationError{Field: "rate", Message: "must not be negative"}
		}
		updates["rate"] = *input.Rate
	}
	if input.ApplicationType != nil {
		if !models.IsValidTaxApplication(*input.ApplicationType) {
			return nil, &utils.ValidationError{Field: "applicationType", Message: "must be reservation or order"}
		}
		updates["application_type"] = *input.ApplicationType
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return &tax, nil
	}
	if err := s.DB.Model(&tax).Updates(updates).Error; err != nil {
		return nil, &utils.PersistenceError{Err: err}
	}
	return &tax, nil
}

// Deactivate soft-deletes; existing reservations keep their snapshot.
func (s *TaxService) Deactivate(id uint) error {
	res := s.DB.Model(&models.Tax{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return &utils.PersistenceError{Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &utils.NotFoundError{Resource: "tax"}
	}
	return nil
}
