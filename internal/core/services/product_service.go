package services

import (
	"context"
	"errors"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/adapters/persistence/repositories"
	"salescrm/internal/core/domain"
	"salescrm/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product service errors
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductCodeExists = errors.New("product code already exists")
)

// ProductService handles the product catalog business logic
type ProductService struct {
	productRepo repositories.ProductRepository
	log         *logger.Logger
}

// NewProductService creates a new product service
func NewProductService(productRepo repositories.ProductRepository, log *logger.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		log:         log,
	}
}

// CreateProductInput represents create product input
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	ProductCode string  `json:"product_code" validate:"required,max=50"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"max=100"`
	UnitPrice   string  `json:"unit_price" validate:"required"`
	CostPrice   *string `json:"cost_price"`
	Unit        string  `json:"unit" validate:"max=50"`
	TaxRate     string  `json:"tax_rate"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
}

// UpdateProductInput represents update product input
type UpdateProductInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	UnitPrice   *string `json:"unit_price"`
	CostPrice   *string `json:"cost_price"`
	Unit        *string `json:"unit"`
	IsActive    *bool   `json:"is_active"`
	TaxRate     *string `json:"tax_rate"`
	ImageURL    *string `json:"image_url"`
}

// ProductResponse DTO with the derived profit margin
type ProductResponse struct {
	*models.Product
	ProfitMargin decimal.Decimal `json:"profit_margin"`
}

// ListProductsOutput represents list products output
type ListProductsOutput struct {
	Products   []*ProductResponse `json:"products"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

func toProductResponse(p *models.Product) *ProductResponse {
	return &ProductResponse{
		Product:      p,
		ProfitMargin: p.ProfitMargin(),
	}
}

// CreateProduct creates a new catalog product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, input.ProductCode)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrProductCodeExists
	}

	unitPrice, err := decimal.NewFromString(input.UnitPrice)
	if err != nil || unitPrice.IsNegative() {
		return nil, domain.ErrValidationFailed
	}

	product := &models.Product{
		Name:        input.Name,
		ProductCode: input.ProductCode,
		Description: input.Description,
		Category:    input.Category,
		UnitPrice:   unitPrice,
		Unit:        input.Unit,
		IsActive:    true,
		ImageURL:    input.ImageURL,
	}

	if input.CostPrice != nil {
		costPrice, err := decimal.NewFromString(*input.CostPrice)
		if err != nil || costPrice.IsNegative() {
			return nil, domain.ErrValidationFailed
		}
		product.CostPrice = decimal.NullDecimal{Decimal: costPrice, Valid: true}
	}
	if input.TaxRate != "" {
		taxRate, err := decimal.NewFromString(input.TaxRate)
		if err != nil || taxRate.IsNegative() {
			return nil, domain.ErrValidationFailed
		}
		product.TaxRate = taxRate
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.Info().Uint("product_id", product.ID).Str("code", product.ProductCode).Msg("product created")
	return toProductResponse(product), nil
}

// GetProductByID gets a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return toProductResponse(product), nil
}

// UpdateProduct updates product fields
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, input *UpdateProductInput) (*ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.UnitPrice != nil {
		unitPrice, err := decimal.NewFromString(*input.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			return nil, domain.ErrValidationFailed
		}
		product.UnitPrice = unitPrice
	}
	if input.CostPrice != nil {
		costPrice, err := decimal.NewFromString(*input.CostPrice)
		if err != nil || costPrice.IsNegative() {
			return nil, domain.ErrValidationFailed
		}
		product.CostPrice = decimal.NullDecimal{Decimal: costPrice, Valid: true}
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.TaxRate != nil {
		taxRate, err := decimal.NewFromString(*input.TaxRate)
		if err != nil || taxRate.IsNegative() {
			return nil, domain.ErrValidationFailed
		}
		product.TaxRate = taxRate
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return toProductResponse(product), nil
}

// DeleteProduct soft deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ListProducts lists catalog products with pagination
func (s *ProductService) ListProducts(ctx context.Context, category string, activeOnly bool, page, limit int) (*ListProductsOutput, error) {
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

	products, total, err := s.productRepo.List(ctx, category, activeOnly, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = toProductResponse(p)
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListProductsOutput{
		Products:   responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}
