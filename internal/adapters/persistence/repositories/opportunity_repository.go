package repositories

import (
	"context"
	"time"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/core/domain"

	"gorm.io/gorm"
)

// opportunityRepository implements OpportunityRepository interface
type opportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository creates a new opportunity repository
func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

// Create creates a new opportunity
func (r *opportunityRepository) Create(ctx context.Context, opp *models.Opportunity) error {
	return r.db.WithContext(ctx).Create(opp).Error
}

// GetByID gets an opportunity by ID with customer, owner and line items
func (r *opportunityRepository) GetByID(ctx context.Context, id uint) (*models.Opportunity, error) {
	var opp models.Opportunity
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Owner").
		Preload("Products").
		Preload("Products.Product").
		Where("id = ?", id).
		First(&opp).Error
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

// Update updates an opportunity
func (r *opportunityRepository) Update(ctx context.Context, opp *models.Opportunity) error {
	return r.db.WithContext(ctx).Save(opp).Error
}

// Delete soft deletes an opportunity together with its line items
func (r *opportunityRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("opportunity_id = ?", id).Delete(&models.OpportunityProduct{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Opportunity{}, id).Error
	})
}

// List lists opportunities matching the filter with pagination
func (r *opportunityRepository) List(ctx context.Context, filter OpportunityFilter, offset, limit int) ([]*models.Opportunity, int64, error) {
	var opps []*models.Opportunity
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Opportunity{})
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Customer").Preload("Owner").
		Offset(offset).Limit(limit).Order("id DESC").Find(&opps).Error; err != nil {
		return nil, 0, err
	}

	return opps, total, nil
}

// ListOverdue lists open opportunities whose expected close date has passed
func (r *opportunityRepository) ListOverdue(ctx context.Context) ([]*models.Opportunity, error) {
	var opps []*models.Opportunity
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Owner").
		Where("status = ?", domain.OpportunityOpen).
		Where("expected_close_date IS NOT NULL").
		Where("expected_close_date < ?", time.Now()).
		Order("expected_close_date").
		Find(&opps).Error
	return opps, err
}

// CountByStage counts opportunities in a pipeline stage
func (r *opportunityRepository) CountByStage(ctx context.Context, stage string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Opportunity{}).Where("stage = ?", stage).Count(&count).Error
	return count, err
}

// AddProduct adds a line item to an opportunity
func (r *opportunityRepository) AddProduct(ctx context.Context, item *models.OpportunityProduct) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetProduct gets a line item by ID with its product
func (r *opportunityRepository) GetProduct(ctx context.Context, id uint) (*models.OpportunityProduct, error) {
	var item models.OpportunityProduct
	err := r.db.WithContext(ctx).Preload("Product").Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateProduct updates a line item
func (r *opportunityRepository) UpdateProduct(ctx context.Context, item *models.OpportunityProduct) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// RemoveProduct soft deletes a line item
func (r *opportunityRepository) RemoveProduct(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.OpportunityProduct{}, id).Error
}
