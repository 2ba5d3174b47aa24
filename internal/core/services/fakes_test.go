package services

import (
	"context"
	"time"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/adapters/persistence/repositories"
	"salescrm/internal/pkg/logger"

	"gorm.io/gorm"
)

// In-memory repository fakes for service tests. They implement the same
// contracts as the gorm-backed repositories, including the row-lock semantics
// of UpdateLoginState (sequential apply of fn to the stored record) and the
// all-or-nothing Convert.

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// ------------------------------------------------------------
// Users
// ------------------------------------------------------------

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateLoginState(_ context.Context, id uint, fn func(*models.User) error) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GrantPermission(_ context.Context, userID uint, permission *models.Permission) error {
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Permissions = append(u.Permissions, *permission)
	return nil
}

func (r *fakeUserRepo) RevokePermission(_ context.Context, userID uint, permission *models.Permission) error {
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	kept := u.Permissions[:0]
	for _, p := range u.Permissions {
		if p.Code != permission.Code {
			kept = append(kept, p)
		}
	}
	u.Permissions = kept
	return nil
}

// ------------------------------------------------------------
// Refresh tokens
// ------------------------------------------------------------

type fakeRefreshTokenRepo struct {
	tokens map[string]*models.RefreshToken
	nextID uint
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken), nextID: 1}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	token.ID = r.nextID
	r.nextID++
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	for _, t := range r.tokens {
		if t.ID == id {
			now := time.Now()
			t.RevokedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	if t, ok := r.tokens[tokenHash]; ok {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	for _, t := range r.tokens {
		if t.UserID == userID {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	return nil
}

// ------------------------------------------------------------
// Leads
// ------------------------------------------------------------

type fakeLeadRepo struct {
	leads        map[uint]*models.Lead
	nextID       uint
	convertCalls int
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[uint]*models.Lead), nextID: 1}
}

func (r *fakeLeadRepo) add(l *models.Lead) *models.Lead {
	if l.ID == 0 {
		l.ID = r.nextID
		r.nextID++
	}
	r.leads[l.ID] = l
	return l
}

func (r *fakeLeadRepo) Create(_ context.Context, lead *models.Lead) error {
	r.add(lead)
	return nil
}

func (r *fakeLeadRepo) GetByID(_ context.Context, id uint) (*models.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLeadRepo) Update(_ context.Context, lead *models.Lead) error {
	if _, ok := r.leads[lead.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *lead
	r.leads[lead.ID] = &copied
	return nil
}

func (r *fakeLeadRepo) Delete(_ context.Context, id uint) error {
	delete(r.leads, id)
	return nil
}

func (r *fakeLeadRepo) List(_ context.Context, filter repositories.LeadFilter, offset, limit int) ([]*models.Lead, int64, error) {
	out := make([]*models.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		copied := *l
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeLeadRepo) Search(_ context.Context, query string, limit int) ([]*models.Lead, error) {
	return nil, nil
}

func (r *fakeLeadRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	return 0, nil
}

func (r *fakeLeadRepo) CountConverted(_ context.Context) (int64, error) {
	var n int64
	for _, l := range r.leads {
		if l.IsConverted {
			n++
		}
	}
	return n, nil
}

func (r *fakeLeadRepo) Convert(_ context.Context, lead *models.Lead, customer *models.Customer, opportunity *models.Opportunity) error {
	r.convertCalls++
	customer.ID = 100
	opportunity.ID = 200
	lead.MarkConverted(customer.ID, opportunity.ID)
	copied := *lead
	r.leads[lead.ID] = &copied
	return nil
}

// ------------------------------------------------------------
// Customers
// ------------------------------------------------------------

type fakeCustomerRepo struct {
	customers map[uint]*models.Customer
	nextID    uint
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uint]*models.Customer), nextID: 1}
}

func (r *fakeCustomerRepo) add(c *models.Customer) *models.Customer {
	if c.ID == 0 {
		c.ID = r.nextID
		r.nextID++
	}
	r.customers[c.ID] = c
	return c
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *models.Customer) error {
	r.add(customer)
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id uint) (*models.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *models.Customer) error {
	if _, ok := r.customers[customer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *customer
	r.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id uint) error {
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) List(_ context.Context, filter repositories.CustomerFilter, offset, limit int) ([]*models.Customer, int64, error) {
	out := make([]*models.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		copied := *c
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCustomerRepo) Search(_ context.Context, query string, limit int) ([]*models.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	return 0, nil
}

// ------------------------------------------------------------
// Opportunities
// ------------------------------------------------------------

type fakeOpportunityRepo struct {
	opps       map[uint]*models.Opportunity
	items      map[uint]*models.OpportunityProduct
	nextID     uint
	nextItemID uint
}

func newFakeOpportunityRepo() *fakeOpportunityRepo {
	return &fakeOpportunityRepo{
		opps:       make(map[uint]*models.Opportunity),
		items:      make(map[uint]*models.OpportunityProduct),
		nextID:     1,
		nextItemID: 1,
	}
}

func (r *fakeOpportunityRepo) add(o *models.Opportunity) *models.Opportunity {
	if o.ID == 0 {
		o.ID = r.nextID
		r.nextID++
	}
	r.opps[o.ID] = o
	return o
}

func (r *fakeOpportunityRepo) Create(_ context.Context, opp *models.Opportunity) error {
	r.add(opp)
	return nil
}

func (r *fakeOpportunityRepo) GetByID(_ context.Context, id uint) (*models.Opportunity, error) {
	o, ok := r.opps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOpportunityRepo) Update(_ context.Context, opp *models.Opportunity) error {
	if _, ok := r.opps[opp.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *opp
	r.opps[opp.ID] = &copied
	return nil
}

func (r *fakeOpportunityRepo) Delete(_ context.Context, id uint) error {
	delete(r.opps, id)
	for itemID, item := range r.items {
		if item.OpportunityID == id {
			delete(r.items, itemID)
		}
	}
	return nil
}

func (r *fakeOpportunityRepo) List(_ context.Context, filter repositories.OpportunityFilter, offset, limit int) ([]*models.Opportunity, int64, error) {
	out := make([]*models.Opportunity, 0, len(r.opps))
	for _, o := range r.opps {
		copied := *o
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOpportunityRepo) ListOverdue(_ context.Context) ([]*models.Opportunity, error) {
	out := make([]*models.Opportunity, 0)
	for _, o := range r.opps {
		if o.IsOverdue() {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeOpportunityRepo) CountByStage(_ context.Context, stage string) (int64, error) {
	return 0, nil
}

func (r *fakeOpportunityRepo) AddProduct(_ context.Context, item *models.OpportunityProduct) error {
	item.ID = r.nextItemID
	r.nextItemID++
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeOpportunityRepo) GetProduct(_ context.Context, id uint) (*models.OpportunityProduct, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeOpportunityRepo) UpdateProduct(_ context.Context, item *models.OpportunityProduct) error {
	if _, ok := r.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeOpportunityRepo) RemoveProduct(_ context.Context, id uint) error {
	delete(r.items, id)
	return nil
}

// ------------------------------------------------------------
// Products
// ------------------------------------------------------------

type fakeProductRepo struct {
	products map[uint]*models.Product
	nextID   uint
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uint]*models.Product), nextID: 1}
}

func (r *fakeProductRepo) add(p *models.Product) *models.Product {
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	r.products[p.ID] = p
	return p
}

func (r *fakeProductRepo) Create(_ context.Context, product *models.Product) error {
	r.add(product)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uint) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) GetByCode(_ context.Context, code string) (*models.Product, error) {
	for _, p := range r.products {
		if p.ProductCode == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) Update(_ context.Context, product *models.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uint) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, category string, activeOnly bool, offset, limit int) ([]*models.Product, int64, error) {
	out := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		copied := *p
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, p := range r.products {
		if p.ProductCode == code {
			return true, nil
		}
	}
	return false, nil
}
