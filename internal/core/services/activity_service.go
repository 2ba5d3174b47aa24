package services

import (
	"context"
	"errors"
	"time"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/adapters/persistence/repositories"
	"salescrm/internal/core/domain"
	"salescrm/internal/pkg/logger"

	"gorm.io/gorm"
)

// Activity service errors
var (
	ErrActivityNotFound = errors.New("activity not found")
)

// ActivityService handles activity scheduling business logic
type ActivityService struct {
	activityRepo repositories.ActivityRepository
	log          *logger.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(activityRepo repositories.ActivityRepository, log *logger.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		log:          log,
	}
}

// CreateActivityInput represents create activity input
type CreateActivityInput struct {
	Subject       string     `json:"subject" validate:"required,max=200"`
	Type          string     `json:"type" validate:"required"`
	Priority      string     `json:"priority" validate:"max=20"`
	DueDate       *time.Time `json:"due_date"`
	Description   string     `json:"description"`
	CustomerID    *uint      `json:"customer_id"`
	OpportunityID *uint      `json:"opportunity_id"`
	AssignedToID  *uint      `json:"assigned_to_id"`
}

// UpdateActivityInput represents update activity input
type UpdateActivityInput struct {
	Subject      *string    `json:"subject"`
	Type         *string    `json:"type"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	Description  *string    `json:"description"`
	AssignedToID *uint      `json:"assigned_to_id"`
}

// ListActivitiesOutput represents list activities output
type ListActivitiesOutput struct {
	Activities []*models.Activity `json:"activities"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// CreateActivity creates a new planned activity
func (s *ActivityService) CreateActivity(ctx context.Context, input *CreateActivityInput) (*models.Activity, error) {
	activity := &models.Activity{
		Subject:       input.Subject,
		Type:          domain.ActivityType(input.Type),
		Status:        domain.ActivityPlanned,
		Priority:      input.Priority,
		DueDate:       input.DueDate,
		Description:   input.Description,
		CustomerID:    input.CustomerID,
		OpportunityID: input.OpportunityID,
		AssignedToID:  input.AssignedToID,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, err
	}

	s.log.Info().Uint("activity_id", activity.ID).Str("type", string(activity.Type)).Msg("activity created")
	return activity, nil
}

// GetActivityByID gets an activity by ID
func (s *ActivityService) GetActivityByID(ctx context.Context, id uint) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return activity, nil
}

// UpdateActivity updates activity fields
func (s *ActivityService) UpdateActivity(ctx context.Context, id uint, input *UpdateActivityInput) (*models.Activity, error) {
	activity, err := s.GetActivityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Subject != nil {
		activity.Subject = *input.Subject
	}
	if input.Type != nil {
		activity.Type = domain.ActivityType(*input.Type)
	}
	if input.Status != nil {
		activity.Status = domain.ActivityStatus(*input.Status)
	}
	if input.Priority != nil {
		activity.Priority = *input.Priority
	}
	if input.DueDate != nil {
		activity.DueDate = input.DueDate
	}
	if input.Description != nil {
		activity.Description = *input.Description
	}
	if input.AssignedToID != nil {
		activity.AssignedToID = input.AssignedToID
	}

	if err := s.activityRepo.Update(ctx, activity); err != nil {
		return nil, err
	}

	return activity, nil
}

// CompleteActivity marks an activity completed with a timestamp
func (s *ActivityService) CompleteActivity(ctx context.Context, id uint) (*models.Activity, error) {
	activity, err := s.GetActivityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	activity.Status = domain.ActivityCompleted
	activity.CompletedAt = &now

	if err := s.activityRepo.Update(ctx, activity); err != nil {
		return nil, err
	}

	return activity, nil
}

// DeleteActivity soft deletes an activity
func (s *ActivityService) DeleteActivity(ctx context.Context, id uint) error {
	if _, err := s.GetActivityByID(ctx, id); err != nil {
		return err
	}
	return s.activityRepo.Delete(ctx, id)
}

// ListActivities lists activities matching the filter with pagination
func (s *ActivityService) ListActivities(ctx context.Context, filter repositories.ActivityFilter, page, limit int) (*ListActivitiesOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset := (page - 1) * limit

	activities, total, err := s.activityRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListActivitiesOutput{
		Activities: activities,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// ListUpcoming lists planned activities due from now on
func (s *ActivityService) ListUpcoming(ctx context.Context, limit int) ([]*models.Activity, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.activityRepo.ListUpcoming(ctx, limit)
}

// ListOverdue lists activities past due and not completed
func (s *ActivityService) ListOverdue(ctx context.Context, limit int) ([]*models.Activity, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.activityRepo.ListOverdue(ctx, limit)
}
