package models

import (
	"time"

	"salescrm/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

// ============================================================
// Leads
// ============================================================

// Lead represents leads table
type Lead struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	FirstName   string `gorm:"size:50;not null" json:"first_name"`
	LastName    string `gorm:"size:50;not null" json:"last_name"`
	CompanyName string `gorm:"size:200" json:"company_name"`
	JobTitle    string `gorm:"size:100" json:"job_title"`
	Email       string `gorm:"size:100;index" json:"email"`
	Phone       string `gorm:"size:20" json:"phone"`
	Mobile      string `gorm:"size:20" json:"mobile"`
	Website     string `gorm:"size:200" json:"website"`

	Address    string `gorm:"size:500" json:"address"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	Country    string `gorm:"size:100" json:"country"`

	Status            domain.LeadStatus   `gorm:"size:20;not null;default:'NEW';index" json:"status"`
	Source            domain.LeadSource   `gorm:"size:50;index" json:"source"`
	Rating            int                 `json:"rating"` // 1-5 stars
	EstimatedValue    decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"estimated_value"`
	ExpectedCloseDate *time.Time          `gorm:"type:date" json:"expected_close_date"`
	AssignedToID      *uint               `gorm:"index" json:"assigned_to_id"`
	Notes             string              `gorm:"type:text" json:"notes"`
	Tags              string              `gorm:"size:500" json:"tags"`

	// Conversion bookkeeping. Invariant: IsConverted is true iff status is
	// CONVERTED iff both converted references are set. A lead converts once.
	IsConverted            bool       `gorm:"default:false" json:"is_converted"`
	ConvertedAt            *time.Time `gorm:"type:date" json:"converted_at"`
	ConvertedCustomerID    *uint      `json:"converted_customer_id"`
	ConvertedOpportunityID *uint      `json:"converted_opportunity_id"`

	LinkedinURL   string `gorm:"size:200" json:"linkedin_url"`
	TwitterHandle string `gorm:"size:100" json:"twitter_handle"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	AssignedTo           *User        `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	ConvertedCustomer    *Customer    `gorm:"foreignKey:ConvertedCustomerID" json:"converted_customer,omitempty"`
	ConvertedOpportunity *Opportunity `gorm:"foreignKey:ConvertedOpportunityID" json:"converted_opportunity,omitempty"`
}

func (Lead) TableName() string {
	return "leads"
}

// FullName returns first and last name joined
func (l *Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}

// IsQualified reports whether the lead has been qualified
func (l *Lead) IsQualified() bool {
	return l.Status == domain.LeadQualified
}

// MarkConverted applies the one-time conversion state transition. The caller
// must have checked IsConverted beforehand; persistence of the lead together
// with the customer and opportunity is the repository's transaction.
func (l *Lead) MarkConverted(customerID, opportunityID uint) {
	today := time.Now()
	l.IsConverted = true
	l.ConvertedAt = &today
	l.ConvertedCustomerID = &customerID
	l.ConvertedOpportunityID = &opportunityID
	l.Status = domain.LeadConverted
}

// ============================================================
// Customers & Contacts
// ============================================================

// Customer represents customers table. Contacts are owned (deleting the
// customer deletes them); opportunities and activities are independent
// records that merely reference the customer.
type Customer struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CompanyName  string `gorm:"size:200;not null" json:"company_name"`
	CustomerType string `gorm:"size:50" json:"customer_type"`
	Industry     string `gorm:"size:100;index" json:"industry"`
	Email        string `gorm:"size:100" json:"email"`
	Phone        string `gorm:"size:20" json:"phone"`
	Website      string `gorm:"size:200" json:"website"`
	TaxNumber    string `gorm:"size:50" json:"tax_number"`
	TaxOffice    string `gorm:"size:100" json:"tax_office"`

	Address    string `gorm:"size:500" json:"address"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	Country    string `gorm:"size:100" json:"country"`

	EmployeeCount int                   `json:"employee_count"`
	AnnualRevenue decimal.NullDecimal   `gorm:"type:decimal(15,2)" json:"annual_revenue"`
	CustomerSince *time.Time            `gorm:"type:date" json:"customer_since"`
	Status        domain.CustomerStatus `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`

	AccountManagerID *uint  `gorm:"index" json:"account_manager_id"`
	Rating           int    `json:"rating"` // 1-5 stars
	Notes            string `gorm:"type:text" json:"notes"`
	Tags             string `gorm:"size:500" json:"tags"`

	LinkedinURL   string `gorm:"size:200" json:"linkedin_url"`
	TwitterHandle string `gorm:"size:100" json:"twitter_handle"`
	FacebookURL   string `gorm:"size:200" json:"facebook_url"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations: Contacts cascade with the customer, the rest do not
	AccountManager *User         `gorm:"foreignKey:AccountManagerID" json:"account_manager,omitempty"`
	Contacts       []Contact     `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
	Opportunities  []Opportunity `gorm:"foreignKey:CustomerID" json:"opportunities,omitempty"`
	Activities     []Activity    `gorm:"foreignKey:CustomerID" json:"activities,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// TotalOpportunityValue sums the value of all loaded opportunities
func (c *Customer) TotalOpportunityValue() decimal.Decimal {
	total := decimal.Zero
	for _, o := range c.Opportunities {
		total = total.Add(o.Value)
	}
	return total
}

// Contact represents contacts table (owned by a customer)
type Contact struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CustomerID      uint           `gorm:"not null;index" json:"customer_id"`
	FirstName       string         `gorm:"size:50;not null" json:"first_name"`
	LastName        string         `gorm:"size:50;not null" json:"last_name"`
	JobTitle        string         `gorm:"size:100" json:"job_title"`
	Department      string         `gorm:"size:100" json:"department"`
	Email           string         `gorm:"size:100" json:"email"`
	Phone           string         `gorm:"size:20" json:"phone"`
	Mobile          string         `gorm:"size:20" json:"mobile"`
	IsPrimary       bool           `gorm:"default:false" json:"is_primary"`
	IsDecisionMaker bool           `gorm:"default:false" json:"is_decision_maker"`
	Notes           string         `gorm:"type:text" json:"notes"`
	LinkedinURL     string         `gorm:"size:200" json:"linkedin_url"`
	TwitterHandle   string         `gorm:"size:100" json:"twitter_handle"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Contact) TableName() string {
	return "contacts"
}

// FullName returns first and last name joined
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ============================================================
// Opportunities
// ============================================================

// Opportunity represents opportunities table
type Opportunity struct {
	ID                uint                     `gorm:"primaryKey" json:"id"`
	Name              string                   `gorm:"size:200;not null" json:"name"`
	CustomerID        uint                     `gorm:"not null;index" json:"customer_id"`
	Value             decimal.Decimal          `gorm:"type:decimal(15,2);not null" json:"value"`
	Stage             domain.OpportunityStage  `gorm:"size:30;not null;default:'PROSPECTING';index" json:"stage"`
	Status            domain.OpportunityStatus `gorm:"size:20;not null;default:'OPEN';index" json:"status"`
	Probability       int                      `json:"probability"` // 0-100%
	ExpectedCloseDate *time.Time               `gorm:"type:date" json:"expected_close_date"`
	ActualCloseDate   *time.Time               `gorm:"type:date" json:"actual_close_date"`
	OwnerID           uint                     `gorm:"not null;index" json:"owner_id"`
	Description       string                   `gorm:"type:text" json:"description"`
	NextStep          string                   `gorm:"size:500" json:"next_step"`
	Tags              string                   `gorm:"size:500" json:"tags"`
	CreatedAt         time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt           `gorm:"index" json:"-"`

	// Relations: line items cascade with the opportunity
	Customer *Customer            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Owner    *User                `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Products []OpportunityProduct `gorm:"foreignKey:OpportunityID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// WeightedValue derives the expected revenue: value * probability / 100.
// Always recomputed from current fields, never stored.
func (o *Opportunity) WeightedValue() decimal.Decimal {
	return o.Value.
		Mul(decimal.NewFromInt(int64(o.Probability))).
		DivRound(oneHundred, 2)
}

// IsOverdue reports whether the expected close date passed while still open
func (o *Opportunity) IsOverdue() bool {
	return o.ExpectedCloseDate != nil &&
		o.ExpectedCloseDate.Before(time.Now()) &&
		o.Status == domain.OpportunityOpen
}

// ApplyStage moves the opportunity to the given stage and applies the stage
// effect table: probability is overwritten unconditionally, terminal stages
// close the record and stamp the actual close date.
func (o *Opportunity) ApplyStage(stage domain.OpportunityStage) {
	effect := domain.EffectOf(stage)
	o.Stage = stage
	o.Probability = effect.Probability
	if effect.Terminal {
		o.Status = effect.Status
		today := time.Now()
		o.ActualCloseDate = &today
	}
}

// OpportunityResponse DTO with derived valuation fields
type OpportunityResponse struct {
	ID                uint                          `json:"id"`
	Name              string                        `json:"name"`
	CustomerID        uint                          `json:"customer_id"`
	CustomerName      string                        `json:"customer_name,omitempty"`
	Value             decimal.Decimal               `json:"value"`
	WeightedValue     decimal.Decimal               `json:"weighted_value"`
	Stage             domain.OpportunityStage       `json:"stage"`
	Status            domain.OpportunityStatus      `json:"status"`
	Probability       int                           `json:"probability"`
	ExpectedCloseDate *time.Time                    `json:"expected_close_date"`
	ActualCloseDate   *time.Time                    `json:"actual_close_date"`
	IsOverdue         bool                          `json:"is_overdue"`
	OwnerID           uint                          `json:"owner_id"`
	OwnerName         string                        `json:"owner_name,omitempty"`
	Description       string                        `json:"description,omitempty"`
	NextStep          string                        `json:"next_step,omitempty"`
	Products          []*OpportunityProductResponse `json:"products,omitempty"`
	CreatedAt         time.Time                     `json:"created_at"`
	UpdatedAt         time.Time                     `json:"updated_at"`
}

func (o *Opportunity) ToResponse() *OpportunityResponse {
	resp := &OpportunityResponse{
		ID:                o.ID,
		Name:              o.Name,
		CustomerID:        o.CustomerID,
		Value:             o.Value,
		WeightedValue:     o.WeightedValue(),
		Stage:             o.Stage,
		Status:            o.Status,
		Probability:       o.Probability,
		ExpectedCloseDate: o.ExpectedCloseDate,
		ActualCloseDate:   o.ActualCloseDate,
		IsOverdue:         o.IsOverdue(),
		OwnerID:           o.OwnerID,
		Description:       o.Description,
		NextStep:          o.NextStep,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}

	if o.Customer != nil {
		resp.CustomerName = o.Customer.CompanyName
	}
	if o.Owner != nil {
		resp.OwnerName = o.Owner.FullName()
	}
	for i := range o.Products {
		resp.Products = append(resp.Products, o.Products[i].ToResponse())
	}

	return resp
}

// OpportunityProduct represents opportunity_products table (line items)
type OpportunityProduct struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	OpportunityID      uint            `gorm:"not null;index" json:"opportunity_id"`
	ProductID          uint            `gorm:"not null;index" json:"product_id"`
	Quantity           int             `gorm:"not null" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount_percentage"`
	TaxRate            decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	Description        string          `gorm:"type:text" json:"description"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OpportunityProduct) TableName() string {
	return "opportunity_products"
}

// Subtotal is unit price times quantity, before discount
func (p *OpportunityProduct) Subtotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// DiscountAmount is the discounted share of the subtotal
func (p *OpportunityProduct) DiscountAmount() decimal.Decimal {
	return p.Subtotal().Mul(p.DiscountPercentage).DivRound(oneHundred, 2)
}

// TotalAfterDiscount is the subtotal less the discount amount
func (p *OpportunityProduct) TotalAfterDiscount() decimal.Decimal {
	return p.Subtotal().Sub(p.DiscountAmount())
}

// TaxAmount is tax applied on the discounted total
func (p *OpportunityProduct) TaxAmount() decimal.Decimal {
	return p.TotalAfterDiscount().Mul(p.TaxRate).DivRound(oneHundred, 2)
}

// Total is the final line total including tax
func (p *OpportunityProduct) Total() decimal.Decimal {
	return p.TotalAfterDiscount().Add(p.TaxAmount())
}

// OpportunityProductResponse DTO with derived line totals
type OpportunityProductResponse struct {
	ID                 uint            `json:"id"`
	OpportunityID      uint            `json:"opportunity_id"`
	ProductID          uint            `json:"product_id"`
	ProductName        string          `json:"product_name,omitempty"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	Total              decimal.Decimal `json:"total"`
	Description        string          `json:"description,omitempty"`
}

func (p *OpportunityProduct) ToResponse() *OpportunityProductResponse {
	resp := &OpportunityProductResponse{
		ID:                 p.ID,
		OpportunityID:      p.OpportunityID,
		ProductID:          p.ProductID,
		Quantity:           p.Quantity,
		UnitPrice:          p.UnitPrice,
		DiscountPercentage: p.DiscountPercentage,
		TaxRate:            p.TaxRate,
		Subtotal:           p.Subtotal(),
		DiscountAmount:     p.DiscountAmount(),
		TaxAmount:          p.TaxAmount(),
		Total:              p.Total(),
		Description:        p.Description,
	}
	if p.Product != nil {
		resp.ProductName = p.Product.Name
	}
	return resp
}

// ============================================================
// Products
// ============================================================

// Product represents products table (catalog reference data)
type Product struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Name        string              `gorm:"size:200;not null" json:"name"`
	ProductCode string              `gorm:"uniqueIndex;size:50;not null" json:"product_code"`
	Description string              `gorm:"type:text" json:"description"`
	Category    string              `gorm:"size:100" json:"category"`
	UnitPrice   decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	CostPrice   decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"cost_price"`
	Unit        string              `gorm:"size:50" json:"unit"`
	IsActive    bool                `gorm:"default:true;index" json:"is_active"`
	TaxRate     decimal.Decimal     `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	ImageURL    string              `gorm:"size:500" json:"image_url"`
	CreatedAt   time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ProfitMargin derives (unitPrice - costPrice) / costPrice * 100, computed
// at 4 fraction digits before scaling. Zero when cost price is unset or zero.
func (p *Product) ProfitMargin() decimal.Decimal {
	if !p.CostPrice.Valid || p.CostPrice.Decimal.IsZero() {
		return decimal.Zero
	}
	return p.UnitPrice.
		Sub(p.CostPrice.Decimal).
		DivRound(p.CostPrice.Decimal, 4).
		Mul(oneHundred)
}

// ============================================================
// Activities
// ============================================================

// Activity represents activities table (calls, meetings, emails, tasks)
type Activity struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	Subject       string                `gorm:"size:200;not null" json:"subject"`
	Type          domain.ActivityType   `gorm:"size:20;not null;index" json:"type"`
	Status        domain.ActivityStatus `gorm:"size:20;not null;default:'PLANNED';index" json:"status"`
	Priority      string                `gorm:"size:20" json:"priority"`
	DueDate       *time.Time            `json:"due_date"`
	CompletedAt   *time.Time            `json:"completed_at"`
	Description   string                `gorm:"type:text" json:"description"`
	CustomerID    *uint                 `gorm:"index" json:"customer_id"`
	OpportunityID *uint                 `gorm:"index" json:"opportunity_id"`
	AssignedToID  *uint                 `gorm:"index" json:"assigned_to_id"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt        `gorm:"index" json:"-"`

	// Relations
	Customer    *Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Opportunity *Opportunity `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
	AssignedTo  *User        `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

// IsOverdue reports whether the due date passed without completion
func (a *Activity) IsOverdue() bool {
	return a.DueDate != nil &&
		a.DueDate.Before(time.Now()) &&
		a.Status != domain.ActivityCompleted &&
		a.Status != domain.ActivityCancelled
}
