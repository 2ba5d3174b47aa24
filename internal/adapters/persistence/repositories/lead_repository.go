package repositories

import (
	"context"

	"salescrm/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// leadRepository implements LeadRepository interface
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

// Create creates a new lead
func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// GetByID gets a lead by ID with its relations
func (r *leadRepository) GetByID(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Preload("AssignedTo").
		Preload("ConvertedCustomer").
		Preload("ConvertedOpportunity").
		Where("id = ?", id).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// Update updates a lead
func (r *leadRepository) Update(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

// Delete soft deletes a lead
func (r *leadRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Lead{}, id).Error
}

// List lists leads matching the filter with pagination
func (r *leadRepository) List(ctx context.Context, filter LeadFilter, offset, limit int) ([]*models.Lead, int64, error) {
	var leads []*models.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Lead{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.Converted != nil {
		query = query.Where("is_converted = ?", *filter.Converted)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("AssignedTo").
		Offset(offset).Limit(limit).Order("id DESC").Find(&leads).Error; err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// Search searches leads by name, company or email
func (r *leadRepository) Search(ctx context.Context, query string, limit int) ([]*models.Lead, error) {
	var leads []*models.Lead
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("first_name LIKE ? OR last_name LIKE ? OR company_name LIKE ? OR email LIKE ?",
			pattern, pattern, pattern, pattern).
		Limit(limit).
		Find(&leads).Error
	return leads, err
}

// CountByStatus counts leads by status
func (r *leadRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lead{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountConverted counts converted leads
func (r *leadRepository) CountConverted(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lead{}).Where("is_converted = ?", true).Count(&count).Error
	return count, err
}

// Convert persists a lead conversion as one atomic unit: the customer is
// created (or re-saved if pre-existing), the opportunity is created against
// it, and the lead's conversion fields are written. Any failure rolls back
// all three.
func (r *leadRepository) Convert(ctx context.Context, lead *models.Lead, customer *models.Customer, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(customer).Error; err != nil {
			return err
		}
		opportunity.CustomerID = customer.ID
		if err := tx.Create(opportunity).Error; err != nil {
			return err
		}
		lead.MarkConverted(customer.ID, opportunity.ID)
		return tx.Save(lead).Error
	})
}
