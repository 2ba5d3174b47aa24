package services

import (
	"context"
	"errors"
	"time"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/adapters/persistence/repositories"
	"salescrm/internal/core/domain"
	"salescrm/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Lead service errors
var (
	ErrLeadNotFound = errors.New("lead not found")
)

// LeadService handles lead management and conversion business logic
type LeadService struct {
	leadRepo repositories.LeadRepository
	userRepo repositories.UserRepository
	log      *logger.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(
	leadRepo repositories.LeadRepository,
	userRepo repositories.UserRepository,
	log *logger.Logger,
) *LeadService {
	return &LeadService{
		leadRepo: leadRepo,
		userRepo: userRepo,
		log:      log,
	}
}

// CreateLeadInput represents create lead input
type CreateLeadInput struct {
	FirstName         string     `json:"first_name" validate:"required,max=50"`
	LastName          string     `json:"last_name" validate:"required,max=50"`
	CompanyName       string     `json:"company_name" validate:"max=200"`
	JobTitle          string     `json:"job_title" validate:"max=100"`
	Email             string     `json:"email" validate:"omitempty,email"`
	Phone             string     `json:"phone" validate:"max=20"`
	Mobile            string     `json:"mobile" validate:"max=20"`
	Website           string     `json:"website" validate:"omitempty,url"`
	Source            string     `json:"source"`
	Rating            int        `json:"rating" validate:"gte=0,lte=5"`
	EstimatedValue    *string    `json:"estimated_value"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	AssignedToID      *uint      `json:"assigned_to_id"`
	Notes             string     `json:"notes"`
	Tags              string     `json:"tags" validate:"max=500"`
}

// UpdateLeadInput represents update lead input
type UpdateLeadInput struct {
	FirstName         *string    `json:"first_name"`
	LastName          *string    `json:"last_name"`
	CompanyName       *string    `json:"company_name"`
	JobTitle          *string    `json:"job_title"`
	Email             *string    `json:"email"`
	Phone             *string    `json:"phone"`
	Mobile            *string    `json:"mobile"`
	Website           *string    `json:"website"`
	Status            *string    `json:"status"`
	Source            *string    `json:"source"`
	Rating            *int       `json:"rating"`
	EstimatedValue    *string    `json:"estimated_value"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	Notes             *string    `json:"notes"`
	Tags              *string    `json:"tags"`
}

// ConvertLeadInput represents lead conversion input. The opportunity is
// always created; customer details default from the lead when omitted.
type ConvertLeadInput struct {
	CompanyName      string     `json:"company_name"`
	OpportunityName  string     `json:"opportunity_name" validate:"required,max=200"`
	OpportunityValue string     `json:"opportunity_value" validate:"required"`
	ExpectedClose    *time.Time `json:"expected_close_date"`
	OwnerID          uint       `json:"owner_id" validate:"required"`
}

// ListLeadsOutput represents list leads output
type ListLeadsOutput struct {
	Leads      []*models.Lead `json:"leads"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// CreateLead creates a new lead in NEW status
func (s *LeadService) CreateLead(ctx context.Context, input *CreateLeadInput) (*models.Lead, error) {
	lead := &models.Lead{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		CompanyName:       input.CompanyName,
		JobTitle:          input.JobTitle,
		Email:             input.Email,
		Phone:             input.Phone,
		Mobile:            input.Mobile,
		Website:           input.Website,
		Status:            domain.LeadNew,
		Source:            domain.LeadSource(input.Source),
		Rating:            input.Rating,
		ExpectedCloseDate: input.ExpectedCloseDate,
		AssignedToID:      input.AssignedToID,
		Notes:             input.Notes,
		Tags:              input.Tags,
	}

	if input.EstimatedValue != nil {
		value, err := decimal.NewFromString(*input.EstimatedValue)
		if err != nil {
			return nil, domain.ErrValidationFailed
		}
		lead.EstimatedValue = decimal.NullDecimal{Decimal: value, Valid: true}
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.log.Info().Uint("lead_id", lead.ID).Str("source", string(lead.Source)).Msg("lead created")
	return lead, nil
}

// GetLeadByID gets a lead by ID
func (s *LeadService) GetLeadByID(ctx context.Context, id uint) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

// UpdateLead updates lead fields. Converted leads are immutable.
func (s *LeadService) UpdateLead(ctx context.Context, id uint, input *UpdateLeadInput) (*models.Lead, error) {
	lead, err := s.GetLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if lead.IsConverted {
		return nil, domain.ErrAlreadyConverted
	}

	if input.FirstName != nil {
		lead.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		lead.LastName = *input.LastName
	}
	if input.CompanyName != nil {
		lead.CompanyName = *input.CompanyName
	}
	if input.JobTitle != nil {
		lead.JobTitle = *input.JobTitle
	}
	if input.Email != nil {
		lead.Email = *input.Email
	}
	if input.Phone != nil {
		lead.Phone = *input.Phone
	}
	if input.Mobile != nil {
		lead.Mobile = *input.Mobile
	}
	if input.Website != nil {
		lead.Website = *input.Website
	}
	if input.Status != nil {
		status := domain.LeadStatus(*input.Status)
		// CONVERTED is only reachable through Convert
		if status == domain.LeadConverted {
			return nil, domain.ErrValidationFailed
		}
		lead.Status = status
	}
	if input.Source != nil {
		lead.Source = domain.LeadSource(*input.Source)
	}
	if input.Rating != nil {
		lead.Rating = *input.Rating
	}
	if input.EstimatedValue != nil {
		value, err := decimal.NewFromString(*input.EstimatedValue)
		if err != nil {
			return nil, domain.ErrValidationFailed
		}
		lead.EstimatedValue = decimal.NullDecimal{Decimal: value, Valid: true}
	}
	if input.ExpectedCloseDate != nil {
		lead.ExpectedCloseDate = input.ExpectedCloseDate
	}
	if input.Notes != nil {
		lead.Notes = *input.Notes
	}
	if input.Tags != nil {
		lead.Tags = *input.Tags
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}

	return lead, nil
}

// DeleteLead soft deletes a lead
func (s *LeadService) DeleteLead(ctx context.Context, id uint) error {
	if _, err := s.GetLeadByID(ctx, id); err != nil {
		return err
	}
	return s.leadRepo.Delete(ctx, id)
}

// ListLeads lists leads matching the filter with pagination
func (s *LeadService) ListLeads(ctx context.Context, filter repositories.LeadFilter, page, limit int) (*ListLeadsOutput, error) {
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

	leads, total, err := s.leadRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListLeadsOutput{
		Leads:      leads,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// SearchLeads searches leads by name, company or email
func (s *LeadService) SearchLeads(ctx context.Context, query string) ([]*models.Lead, error) {
	return s.leadRepo.Search(ctx, query, 20)
}

// AssignLead assigns a lead to a user
func (s *LeadService) AssignLead(ctx context.Context, id, userID uint) (*models.Lead, error) {
	lead, err := s.GetLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.IsConverted {
		return nil, domain.ErrAlreadyConverted
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}

	lead.AssignedToID = &userID
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}

	s.log.Info().Uint("lead_id", id).Uint("user_id", userID).Msg("lead assigned")
	return lead, nil
}

// QualifyLead marks a lead as qualified
func (s *LeadService) QualifyLead(ctx context.Context, id uint) (*models.Lead, error) {
	lead, err := s.GetLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.IsConverted {
		return nil, domain.ErrAlreadyConverted
	}

	lead.Status = domain.LeadQualified
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}

	return lead, nil
}

// ConvertLead converts a lead into a customer and an opportunity in one
// transaction. A converted lead can never convert again: the check happens
// before any write and the failure leaves the lead untouched.
func (s *LeadService) ConvertLead(ctx context.Context, id uint, input *ConvertLeadInput) (*models.Lead, error) {
	lead, err := s.GetLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if lead.IsConverted {
		return nil, domain.ErrAlreadyConverted
	}

	value, err := decimal.NewFromString(input.OpportunityValue)
	if err != nil || value.IsNegative() {
		return nil, domain.ErrValidationFailed
	}

	if _, err := s.userRepo.GetByID(ctx, input.OwnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}

	companyName := input.CompanyName
	if companyName == "" {
		companyName = lead.CompanyName
	}
	if companyName == "" {
		companyName = lead.FullName()
	}

	now := time.Now()
	customer := &models.Customer{
		CompanyName:      companyName,
		Email:            lead.Email,
		Phone:            lead.Phone,
		Website:          lead.Website,
		Address:          lead.Address,
		City:             lead.City,
		State:            lead.State,
		PostalCode:       lead.PostalCode,
		Country:          lead.Country,
		Status:           domain.CustomerProspect,
		AccountManagerID: lead.AssignedToID,
		Rating:           lead.Rating,
		Notes:            lead.Notes,
		Tags:             lead.Tags,
		LinkedinURL:      lead.LinkedinURL,
		TwitterHandle:    lead.TwitterHandle,
		CustomerSince:    &now,
	}

	opportunity := &models.Opportunity{
		Name:              input.OpportunityName,
		Value:             value,
		OwnerID:           input.OwnerID,
		ExpectedCloseDate: input.ExpectedClose,
	}
	opportunity.ApplyStage(domain.StageProspecting)

	if err := s.leadRepo.Convert(ctx, lead, customer, opportunity); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("lead_id", lead.ID).
		Uint("customer_id", customer.ID).
		Uint("opportunity_id", opportunity.ID).
		Msg("lead converted")

	return lead, nil
}
