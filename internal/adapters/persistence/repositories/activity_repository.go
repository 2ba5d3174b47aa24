package repositories

import (
	"context"
	"time"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/core/domain"

	"gorm.io/gorm"
)

// activityRepository implements ActivityRepository interface
type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Create creates a new activity
func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// GetByID gets an activity by ID with its relations
func (r *activityRepository) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Opportunity").
		Preload("AssignedTo").
		Where("id = ?", id).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// Update updates an activity
func (r *activityRepository) Update(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}

// Delete soft deletes an activity
func (r *activityRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Activity{}, id).Error
}

// List lists activities matching the filter with pagination
func (r *activityRepository) List(ctx context.Context, filter ActivityFilter, offset, limit int) ([]*models.Activity, int64, error) {
	var activities []*models.Activity
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Activity{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.OpportunityID != nil {
		query = query.Where("opportunity_id = ?", *filter.OpportunityID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("AssignedTo").
		Offset(offset).Limit(limit).Order("due_date IS NULL, due_date").Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

// ListUpcoming lists planned activities due from now on, soonest first
func (r *activityRepository) ListUpcoming(ctx context.Context, limit int) ([]*models.Activity, error) {
	var activities []*models.Activity
	err := r.db.WithContext(ctx).
		Preload("AssignedTo").
		Where("status = ?", domain.ActivityPlanned).
		Where("due_date >= ?", time.Now()).
		Order("due_date").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

// ListOverdue lists activities past due and not completed or cancelled
func (r *activityRepository) ListOverdue(ctx context.Context, limit int) ([]*models.Activity, error) {
	var activities []*models.Activity
	err := r.db.WithContext(ctx).
		Preload("AssignedTo").
		Where("due_date < ?", time.Now()).
		Where("status NOT IN ?", []domain.ActivityStatus{domain.ActivityCompleted, domain.ActivityCancelled}).
		Order("due_date").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
