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

// Customer service errors
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrContactNotFound  = errors.New("contact not found")
)

// CustomerService handles customer and contact business logic
type CustomerService struct {
	customerRepo repositories.CustomerRepository
	contactRepo  repositories.ContactRepository
	log          *logger.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo repositories.CustomerRepository,
	contactRepo repositories.ContactRepository,
	log *logger.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		contactRepo:  contactRepo,
		log:          log,
	}
}

// CreateCustomerInput represents create customer input
type CreateCustomerInput struct {
	CompanyName   string  `json:"company_name" validate:"required,max=200"`
	CustomerType  string  `json:"customer_type" validate:"max=50"`
	Industry      string  `json:"industry" validate:"max=100"`
	Email         string  `json:"email" validate:"omitempty,email"`
	Phone         string  `json:"phone" validate:"max=20"`
	Website       string  `json:"website" validate:"omitempty,url"`
	TaxNumber     string  `json:"tax_number" validate:"max=50"`
	Address       string  `json:"address" validate:"max=500"`
	City          string  `json:"city" validate:"max=100"`
	Country       string  `json:"country" validate:"max=100"`
	EmployeeCount int     `json:"employee_count" validate:"gte=0"`
	AnnualRevenue *string `json:"annual_revenue"`
	Status        string  `json:"status"`
	AccountMgrID  *uint   `json:"account_manager_id"`
	Rating        int     `json:"rating" validate:"gte=0,lte=5"`
	Notes         string  `json:"notes"`
	Tags          string  `json:"tags" validate:"max=500"`
}

// UpdateCustomerInput represents update customer input
type UpdateCustomerInput struct {
	CompanyName   *string `json:"company_name"`
	CustomerType  *string `json:"customer_type"`
	Industry      *string `json:"industry"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Website       *string `json:"website"`
	TaxNumber     *string `json:"tax_number"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
	EmployeeCount *int    `json:"employee_count"`
	AnnualRevenue *string `json:"annual_revenue"`
	Status        *string `json:"status"`
	AccountMgrID  *uint   `json:"account_manager_id"`
	Rating        *int    `json:"rating"`
	Notes         *string `json:"notes"`
	Tags          *string `json:"tags"`
}

// ContactInput represents contact create/update input
type ContactInput struct {
	FirstName       string `json:"first_name" validate:"required,max=50"`
	LastName        string `json:"last_name" validate:"required,max=50"`
	JobTitle        string `json:"job_title" validate:"max=100"`
	Department      string `json:"department" validate:"max=100"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone" validate:"max=20"`
	Mobile          string `json:"mobile" validate:"max=20"`
	IsPrimary       bool   `json:"is_primary"`
	IsDecisionMaker bool   `json:"is_decision_maker"`
	Notes           string `json:"notes"`
}

// ListCustomersOutput represents list customers output
type ListCustomersOutput struct {
	Customers  []*models.Customer `json:"customers"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*models.Customer, error) {
	status := domain.CustomerStatus(input.Status)
	if status == "" {
		status = domain.CustomerActive
	}

	now := time.Now()
	customer := &models.Customer{
		CompanyName:      input.CompanyName,
		CustomerType:     input.CustomerType,
		Industry:         input.Industry,
		Email:            input.Email,
		Phone:            input.Phone,
		Website:          input.Website,
		TaxNumber:        input.TaxNumber,
		Address:          input.Address,
		City:             input.City,
		Country:          input.Country,
		EmployeeCount:    input.EmployeeCount,
		Status:           status,
		AccountManagerID: input.AccountMgrID,
		Rating:           input.Rating,
		Notes:            input.Notes,
		Tags:             input.Tags,
		CustomerSince:    &now,
	}

	if input.AnnualRevenue != nil {
		revenue, err := decimal.NewFromString(*input.AnnualRevenue)
		if err != nil {
			return nil, domain.ErrValidationFailed
		}
		customer.AnnualRevenue = decimal.NullDecimal{Decimal: revenue, Valid: true}
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.log.Info().Uint("customer_id", customer.ID).Str("company", customer.CompanyName).Msg("customer created")
	return customer, nil
}

// GetCustomerByID gets a customer by ID with contacts
func (s *CustomerService) GetCustomerByID(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// UpdateCustomer updates customer fields
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uint, input *UpdateCustomerInput) (*models.Customer, error) {
	customer, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CompanyName != nil {
		customer.CompanyName = *input.CompanyName
	}
	if input.CustomerType != nil {
		customer.CustomerType = *input.CustomerType
	}
	if input.Industry != nil {
		customer.Industry = *input.Industry
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Website != nil {
		customer.Website = *input.Website
	}
	if input.TaxNumber != nil {
		customer.TaxNumber = *input.TaxNumber
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.City != nil {
		customer.City = *input.City
	}
	if input.Country != nil {
		customer.Country = *input.Country
	}
	if input.EmployeeCount != nil {
		customer.EmployeeCount = *input.EmployeeCount
	}
	if input.AnnualRevenue != nil {
		revenue, err := decimal.NewFromString(*input.AnnualRevenue)
		if err != nil {
			return nil, domain.ErrValidationFailed
		}
		customer.AnnualRevenue = decimal.NullDecimal{Decimal: revenue, Valid: true}
	}
	if input.Status != nil {
		customer.Status = domain.CustomerStatus(*input.Status)
	}
	if input.AccountMgrID != nil {
		customer.AccountManagerID = input.AccountMgrID
	}
	if input.Rating != nil {
		customer.Rating = *input.Rating
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.Tags != nil {
		customer.Tags = *input.Tags
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer soft deletes a customer and its owned contacts
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uint) error {
	if _, err := s.GetCustomerByID(ctx, id); err != nil {
		return err
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Uint("customer_id", id).Msg("customer deleted")
	return nil
}

// ListCustomers lists customers matching the filter with pagination
func (s *CustomerService) ListCustomers(ctx context.Context, filter repositories.CustomerFilter, page, limit int) (*ListCustomersOutput, error) {
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

	customers, total, err := s.customerRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListCustomersOutput{
		Customers:  customers,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// SearchCustomers searches customers by company name or email
func (s *CustomerService) SearchCustomers(ctx context.Context, query string) ([]*models.Customer, error) {
	return s.customerRepo.Search(ctx, query, 20)
}

// AddContact adds a contact to a customer
func (s *CustomerService) AddContact(ctx context.Context, customerID uint, input *ContactInput) (*models.Contact, error) {
	if _, err := s.GetCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		CustomerID:      customerID,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		JobTitle:        input.JobTitle,
		Department:      input.Department,
		Email:           input.Email,
		Phone:           input.Phone,
		Mobile:          input.Mobile,
		IsPrimary:       input.IsPrimary,
		IsDecisionMaker: input.IsDecisionMaker,
		Notes:           input.Notes,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// UpdateContact updates a contact of a customer
func (s *CustomerService) UpdateContact(ctx context.Context, customerID, contactID uint, input *ContactInput) (*models.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	if contact.CustomerID != customerID {
		return nil, ErrContactNotFound
	}

	contact.FirstName = input.FirstName
	contact.LastName = input.LastName
	contact.JobTitle = input.JobTitle
	contact.Department = input.Department
	contact.Email = input.Email
	contact.Phone = input.Phone
	contact.Mobile = input.Mobile
	contact.IsPrimary = input.IsPrimary
	contact.IsDecisionMaker = input.IsDecisionMaker
	contact.Notes = input.Notes

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// RemoveContact removes a contact from a customer
func (s *CustomerService) RemoveContact(ctx context.Context, customerID, contactID uint) error {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	if contact.CustomerID != customerID {
		return ErrContactNotFound
	}

	return s.contactRepo.Delete(ctx, contactID)
}

// ListContacts lists contacts of a customer
func (s *CustomerService) ListContacts(ctx context.Context, customerID uint) ([]*models.Contact, error) {
	if _, err := s.GetCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.contactRepo.ListByCustomer(ctx, customerID)
}
