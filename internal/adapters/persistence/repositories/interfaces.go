package repositories

import (
	"context"

	"salescrm/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface.
// UpdateLoginState is the serialization point for concurrent login events:
// implementations must apply fn under a row-level lock so two concurrent
// failed-login recordings can never lose an increment.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateLoginState(ctx context.Context, id uint, fn func(*models.User) error) (*models.User, error)
	GrantPermission(ctx context.Context, userID uint, permission *models.Permission) error
	RevokePermission(ctx context.Context, userID uint, permission *models.Permission) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// LeadFilter narrows lead listings
type LeadFilter struct {
	Status       string
	Source       string
	AssignedToID *uint
	Converted    *bool
}

// LeadRepository defines lead repository interface.
// Convert must persist the customer, the opportunity and the mutated lead as
// one atomic unit: either all three writes land or none do.
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id uint) (*models.Lead, error)
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter LeadFilter, offset, limit int) ([]*models.Lead, int64, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Lead, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountConverted(ctx context.Context) (int64, error)
	Convert(ctx context.Context, lead *models.Lead, customer *models.Customer, opportunity *models.Opportunity) error
}

// CustomerFilter narrows customer listings
type CustomerFilter struct {
	Status           string
	Industry         string
	AccountManagerID *uint
}

// CustomerRepository defines customer repository interface.
// Delete removes the customer together with its owned contacts; referenced
// opportunities and activities are left untouched.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter CustomerFilter, offset, limit int) ([]*models.Customer, int64, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Customer, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// OpportunityFilter narrows opportunity listings
type OpportunityFilter struct {
	Stage      string
	Status     string
	OwnerID    *uint
	CustomerID *uint
}

// OpportunityRepository defines opportunity repository interface
type OpportunityRepository interface {
	Create(ctx context.Context, opp *models.Opportunity) error
	GetByID(ctx context.Context, id uint) (*models.Opportunity, error)
	Update(ctx context.Context, opp *models.Opportunity) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter OpportunityFilter, offset, limit int) ([]*models.Opportunity, int64, error)
	ListOverdue(ctx context.Context) ([]*models.Opportunity, error)
	CountByStage(ctx context.Context, stage string) (int64, error)

	AddProduct(ctx context.Context, item *models.OpportunityProduct) error
	GetProduct(ctx context.Context, id uint) (*models.OpportunityProduct, error)
	UpdateProduct(ctx context.Context, item *models.OpportunityProduct) error
	RemoveProduct(ctx context.Context, id uint) error
}

// ContactRepository defines contact repository interface
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id uint) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id uint) error
	ListByCustomer(ctx context.Context, customerID uint) ([]*models.Contact, error)
}

// ProductRepository defines product catalog repository interface
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetByCode(ctx context.Context, code string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, category string, activeOnly bool, offset, limit int) ([]*models.Product, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// PermissionRepository defines permission catalogue repository interface
type PermissionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Permission, error)
	GetByCode(ctx context.Context, code string) (*models.Permission, error)
	List(ctx context.Context) ([]*models.Permission, error)
}

// ActivityFilter narrows activity listings
type ActivityFilter struct {
	Type          string
	Status        string
	CustomerID    *uint
	OpportunityID *uint
	AssignedToID  *uint
}

// ActivityRepository defines activity repository interface
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id uint) (*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ActivityFilter, offset, limit int) ([]*models.Activity, int64, error)
	ListUpcoming(ctx context.Context, limit int) ([]*models.Activity, error)
	ListOverdue(ctx context.Context, limit int) ([]*models.Activity, error)
}
