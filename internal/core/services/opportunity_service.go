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

// Opportunity service errors
var (
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrOpportunityClosed   = errors.New("opportunity already closed")
	ErrLineItemNotFound    = errors.New("line item not found")
	ErrInvalidProbability  = errors.New("probability must be between 0 and 100")
	ErrInvalidValue        = errors.New("value must not be negative")
)

// OpportunityService handles the sales pipeline business logic
type OpportunityService struct {
	oppRepo      repositories.OpportunityRepository
	customerRepo repositories.CustomerRepository
	productRepo  repositories.ProductRepository
	log          *logger.Logger
}

// NewOpportunityService creates a new opportunity service
func NewOpportunityService(
	oppRepo repositories.OpportunityRepository,
	customerRepo repositories.CustomerRepository,
	productRepo repositories.ProductRepository,
	log *logger.Logger,
) *OpportunityService {
	return &OpportunityService{
		oppRepo:      oppRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		log:          log,
	}
}

// CreateOpportunityInput represents create opportunity input
type CreateOpportunityInput struct {
	Name              string     `json:"name" validate:"required,max=200"`
	CustomerID        uint       `json:"customer_id" validate:"required"`
	Value             string     `json:"value" validate:"required"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	OwnerID           uint       `json:"owner_id" validate:"required"`
	Description       string     `json:"description"`
	NextStep          string     `json:"next_step" validate:"max=500"`
	Tags              string     `json:"tags" validate:"max=500"`
}

// UpdateOpportunityInput represents update opportunity input
type UpdateOpportunityInput struct {
	Name              *string    `json:"name"`
	Value             *string    `json:"value"`
	Probability       *int       `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	OwnerID           *uint      `json:"owner_id"`
	Description       *string    `json:"description"`
	NextStep          *string    `json:"next_step"`
	Tags              *string    `json:"tags"`
}

// LineItemInput represents a line item create/update input
type LineItemInput struct {
	ProductID          uint   `json:"product_id" validate:"required"`
	Quantity           int    `json:"quantity" validate:"required,gte=1"`
	UnitPrice          string `json:"unit_price"`
	DiscountPercentage string `json:"discount_percentage"`
	TaxRate            string `json:"tax_rate"`
	Description        string `json:"description"`
}

// ListOpportunitiesOutput represents list opportunities output
type ListOpportunitiesOutput struct {
	Opportunities []*models.OpportunityResponse `json:"opportunities"`
	Total         int64                         `json:"total"`
	Page          int                           `json:"page"`
	Limit         int                           `json:"limit"`
	TotalPages    int                           `json:"total_pages"`
}

// CreateOpportunity opens a new opportunity at the start of the pipeline
func (s *OpportunityService) CreateOpportunity(ctx context.Context, input *CreateOpportunityInput) (*models.Opportunity, error) {
	value, err := decimal.NewFromString(input.Value)
	if err != nil {
		return nil, domain.ErrValidationFailed
	}
	if value.IsNegative() {
		return nil, ErrInvalidValue
	}

	if _, err := s.customerRepo.GetByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	opp := &models.Opportunity{
		Name:              input.Name,
		CustomerID:        input.CustomerID,
		Value:             value,
		ExpectedCloseDate: input.ExpectedCloseDate,
		OwnerID:           input.OwnerID,
		Description:       input.Description,
		NextStep:          input.NextStep,
		Tags:              input.Tags,
	}
	opp.ApplyStage(domain.StageProspecting)

	if err := s.oppRepo.Create(ctx, opp); err != nil {
		return nil, err
	}

	s.log.Info().Uint("opportunity_id", opp.ID).Uint("customer_id", opp.CustomerID).Msg("opportunity created")
	return opp, nil
}

// GetOpportunityByID gets an opportunity by ID
func (s *OpportunityService) GetOpportunityByID(ctx context.Context, id uint) (*models.Opportunity, error) {
	opp, err := s.oppRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, err
	}
	return opp, nil
}

// UpdateOpportunity updates opportunity fields. A manual probability override
// is allowed on open opportunities; the next stage transition overwrites it.
func (s *OpportunityService) UpdateOpportunity(ctx context.Context, id uint, input *UpdateOpportunityInput) (*models.Opportunity, error) {
	opp, err := s.GetOpportunityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if domain.IsTerminal(opp.Stage) {
		return nil, ErrOpportunityClosed
	}

	if input.Name != nil {
		opp.Name = *input.Name
	}
	if input.Value != nil {
		value, err := decimal.NewFromString(*input.Value)
		if err != nil {
			return nil, domain.ErrValidationFailed
		}
		if value.IsNegative() {
			return nil, ErrInvalidValue
		}
		opp.Value = value
	}
	if input.Probability != nil {
		if *input.Probability < 0 || *input.Probability > 100 {
			return nil, ErrInvalidProbability
		}
		opp.Probability = *input.Probability
	}
	if input.ExpectedCloseDate != nil {
		opp.ExpectedCloseDate = input.ExpectedCloseDate
	}
	if input.OwnerID != nil {
		opp.OwnerID = *input.OwnerID
	}
	if input.Description != nil {
		opp.Description = *input.Description
	}
	if input.NextStep != nil {
		opp.NextStep = *input.NextStep
	}
	if input.Tags != nil {
		opp.Tags = *input.Tags
	}

	if err := s.oppRepo.Update(ctx, opp); err != nil {
		return nil, err
	}

	return opp, nil
}

// DeleteOpportunity soft deletes an opportunity and its line items
func (s *OpportunityService) DeleteOpportunity(ctx context.Context, id uint) error {
	if _, err := s.GetOpportunityByID(ctx, id); err != nil {
		return err
	}
	return s.oppRepo.Delete(ctx, id)
}

// ListOpportunities lists opportunities matching the filter with pagination
func (s *OpportunityService) ListOpportunities(ctx context.Context, filter repositories.OpportunityFilter, page, limit int) (*ListOpportunitiesOutput, error) {
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

	opps, total, err := s.oppRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.OpportunityResponse, len(opps))
	for i, opp := range opps {
		responses[i] = opp.ToResponse()
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListOpportunitiesOutput{
		Opportunities: responses,
		Total:         total,
		Page:          page,
		Limit:         limit,
		TotalPages:    totalPages,
	}, nil
}

// ListOverdue lists open opportunities past their expected close date
func (s *OpportunityService) ListOverdue(ctx context.Context) ([]*models.OpportunityResponse, error) {
	opps, err := s.oppRepo.ListOverdue(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.OpportunityResponse, len(opps))
	for i, opp := range opps {
		responses[i] = opp.ToResponse()
	}
	return responses, nil
}

// AdvanceStage moves the opportunity one step forward in the pipeline.
// Terminal stages reject the transition; reaching CLOSED_WON closes the
// record with its stage effect.
func (s *OpportunityService) AdvanceStage(ctx context.Context, id uint) (*models.Opportunity, error) {
	opp, err := s.GetOpportunityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := domain.NextStage(opp.Stage)
	if err != nil {
		return nil, err
	}

	opp.ApplyStage(next)

	if err := s.oppRepo.Update(ctx, opp); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("opportunity_id", opp.ID).
		Str("stage", string(opp.Stage)).
		Msg("opportunity stage advanced")

	return opp, nil
}

// Close closes the opportunity as won or lost from any non-terminal stage
func (s *OpportunityService) Close(ctx context.Context, id uint, won bool) (*models.Opportunity, error) {
	opp, err := s.GetOpportunityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if domain.IsTerminal(opp.Stage) {
		return nil, domain.ErrInvalidTransition
	}

	opp.ApplyStage(domain.CloseStage(won))

	if err := s.oppRepo.Update(ctx, opp); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("opportunity_id", opp.ID).
		Bool("won", won).
		Msg("opportunity closed")

	return opp, nil
}

// AddLineItem adds a product line item to an open opportunity. Unit price
// and tax rate default from the product catalog when omitted.
func (s *OpportunityService) AddLineItem(ctx context.Context, oppID uint, input *LineItemInput) (*models.OpportunityProduct, error) {
	opp, err := s.GetOpportunityByID(ctx, oppID)
	if err != nil {
		return nil, err
	}
	if domain.IsTerminal(opp.Stage) {
		return nil, ErrOpportunityClosed
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	item := &models.OpportunityProduct{
		OpportunityID: oppID,
		ProductID:     product.ID,
		Quantity:      input.Quantity,
		UnitPrice:     product.UnitPrice,
		TaxRate:       product.TaxRate,
		Description:   input.Description,
	}

	if input.UnitPrice != "" {
		price, err := decimal.NewFromString(input.UnitPrice)
		if err != nil || price.IsNegative() {
			return nil, domain.ErrValidationFailed
		}
		item.UnitPrice = price
	}
	if input.DiscountPercentage != "" {
		discount, err := decimal.NewFromString(input.DiscountPercentage)
		if err != nil || discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
			return nil, domain.ErrValidationFailed
		}
		item.DiscountPercentage = discount
	}
	if input.TaxRate != "" {
		tax, err := decimal.NewFromString(input.TaxRate)
		if err != nil || tax.IsNegative() {
			return nil, domain.ErrValidationFailed
		}
		item.TaxRate = tax
	}

	if err := s.oppRepo.AddProduct(ctx, item); err != nil {
		return nil, err
	}

	item.Product = product
	return item, nil
}

// UpdateLineItem updates quantity, pricing or discount of a line item
func (s *OpportunityService) UpdateLineItem(ctx context.Context, oppID, itemID uint, input *LineItemInput) (*models.OpportunityProduct, error) {
	opp, err := s.GetOpportunityByID(ctx, oppID)
	if err != nil {
		return nil, err
	}
	if domain.IsTerminal(opp.Stage) {
		return nil, ErrOpportunityClosed
	}

	item, err := s.oppRepo.GetProduct(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineItemNotFound
		}
		return nil, err
	}
	if item.OpportunityID != oppID {
		return nil, ErrLineItemNotFound
	}

	if input.Quantity > 0 {
		item.Quantity = input.Quantity
	}
	if input.UnitPrice != "" {
		price, err := decimal.NewFromString(input.UnitPrice)
		if err != nil || price.IsNegative() {
			return nil, domain.ErrValidationFailed
		}
		item.UnitPrice = price
	}
	if input.DiscountPercentage != "" {
		discount, err := decimal.NewFromString(input.DiscountPercentage)
		if err != nil || discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
			return nil, domain.ErrValidationFailed
		}
		item.DiscountPercentage = discount
	}
	if input.TaxRate != "" {
		tax, err := decimal.NewFromString(input.TaxRate)
		if err != nil || tax.IsNegative() {
			return nil, domain.ErrValidationFailed
		}
		item.TaxRate = tax
	}
	if input.Description != "" {
		item.Description = input.Description
	}

	if err := s.oppRepo.UpdateProduct(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// RemoveLineItem removes a line item from an open opportunity
func (s *OpportunityService) RemoveLineItem(ctx context.Context, oppID, itemID uint) error {
	opp, err := s.GetOpportunityByID(ctx, oppID)
	if err != nil {
		return err
	}
	if domain.IsTerminal(opp.Stage) {
		return ErrOpportunityClosed
	}

	item, err := s.oppRepo.GetProduct(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLineItemNotFound
		}
		return err
	}
	if item.OpportunityID != oppID {
		return ErrLineItemNotFound
	}

	return s.oppRepo.RemoveProduct(ctx, itemID)
}
