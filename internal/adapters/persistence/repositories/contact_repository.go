package repositories

import (
	"context"

	"salescrm/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// contactRepository implements ContactRepository interface
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create creates a new contact
func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// GetByID gets a contact by ID
func (r *contactRepository) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Update updates a contact
func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// Delete soft deletes a contact
func (r *contactRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Contact{}, id).Error
}

// ListByCustomer lists contacts of a customer, primary first
func (r *contactRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*models.Contact, error) {
	var contacts []*models.Contact
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_primary DESC, last_name").
		Find(&contacts).Error
	return contacts, err
}
