package repositories

import (
	"context"

	"salescrm/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// customerRepository implements CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create creates a new customer
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID gets a customer by ID with contacts and account manager
func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("Contacts").
		Preload("AccountManager").
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update updates a customer
func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete soft deletes a customer together with its owned contacts.
// Opportunities and activities referencing the customer stay untouched:
// they have their own lifecycle.
func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&models.Contact{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Customer{}, id).Error
	})
}

// List lists customers matching the filter with pagination
func (r *customerRepository) List(ctx context.Context, filter CustomerFilter, offset, limit int) ([]*models.Customer, int64, error) {
	var customers []*models.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Industry != "" {
		query = query.Where("industry = ?", filter.Industry)
	}
	if filter.AccountManagerID != nil {
		query = query.Where("account_manager_id = ?", *filter.AccountManagerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("AccountManager").
		Offset(offset).Limit(limit).Order("company_name").Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

// Search searches customers by company name or email
func (r *customerRepository) Search(ctx context.Context, query string, limit int) ([]*models.Customer, error) {
	var customers []*models.Customer
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("company_name LIKE ? OR email LIKE ?", pattern, pattern).
		Limit(limit).
		Find(&customers).Error
	return customers, err
}

// CountByStatus counts customers by status
func (r *customerRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
