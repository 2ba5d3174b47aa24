package config

import (
	"log"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/core/domain"
	"salescrm/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedPermissions(); err != nil {
		return err
	}

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if err := s.seedProducts(); err != nil {
		log.Printf("⚠️ Product seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedPermissions seeds the permission catalogue. Codes are stable and
// referenced by route guards, so this runs on every startup as find-or-create.
func (s *Seeder) seedPermissions() error {
	permissions := []models.Permission{
		{Code: "leads.convert", Name: "Convert leads", Category: "leads", Description: "Convert a qualified lead into a customer and opportunity"},
		{Code: "leads.delete", Name: "Delete leads", Category: "leads", Description: "Permanently remove leads"},
		{Code: "opportunities.close", Name: "Close opportunities", Category: "opportunities", Description: "Close opportunities as won or lost"},
		{Code: "products.manage", Name: "Manage products", Category: "products", Description: "Create and modify catalogue products"},
		{Code: "reports.view", Name: "View reports", Category: "reports", Description: "Access team-wide dashboards and reports"},
		{Code: "users.manage", Name: "Manage users", Category: "users", Description: "Create, update and deactivate user accounts"},
	}

	for _, p := range permissions {
		var existing models.Permission
		err := s.db.Where("code = ?", p.Code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := s.db.Create(&p).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		FirstName:          "System",
		LastName:           "Administrator",
		Email:              "admin@salescrm.local",
		Password:           hashedPassword,
		Role:               domain.RoleAdmin,
		Status:             domain.UserActive,
		MustChangePassword: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

// seedProducts seeds a small starter catalogue so a fresh install has
// something to attach to opportunities.
func (s *Seeder) seedProducts() error {
	var count int64
	s.db.Model(&models.Product{}).Count(&count)
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{
			Name:        "CRM Standard License",
			ProductCode: "CRM-STD",
			Category:    "Software",
			UnitPrice:   decimal.NewFromInt(1200),
			CostPrice:   decimal.NewNullDecimal(decimal.NewFromInt(300)),
			Unit:        "seat/year",
			TaxRate:     decimal.NewFromInt(7),
			IsActive:    true,
		},
		{
			Name:        "CRM Enterprise License",
			ProductCode: "CRM-ENT",
			Category:    "Software",
			UnitPrice:   decimal.NewFromInt(4800),
			CostPrice:   decimal.NewNullDecimal(decimal.NewFromInt(900)),
			Unit:        "seat/year",
			TaxRate:     decimal.NewFromInt(7),
			IsActive:    true,
		},
		{
			Name:        "Onboarding Package",
			ProductCode: "SVC-ONBOARD",
			Category:    "Services",
			UnitPrice:   decimal.NewFromInt(15000),
			Unit:        "package",
			TaxRate:     decimal.NewFromInt(7),
			IsActive:    true,
		},
	}

	for i := range products {
		if err := s.db.Create(&products[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d catalogue products", len(products))
	return nil
}
