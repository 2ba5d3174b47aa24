package routes

import (
	"salescrm/internal/adapters/http/handlers"
	"salescrm/internal/adapters/http/middleware"
	"salescrm/internal/adapters/persistence/repositories"
	"salescrm/internal/config"
	"salescrm/internal/core/services"
	"salescrm/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, log *logger.Logger) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	permissionRepo := repositories.NewPermissionRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	oppRepo := repositories.NewOpportunityRepository(db)
	productRepo := repositories.NewProductRepository(db)
	activityRepo := repositories.NewActivityRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg, log)
	userService := services.NewUserService(userRepo, permissionRepo, log)
	leadService := services.NewLeadService(leadRepo, userRepo, log)
	customerService := services.NewCustomerService(customerRepo, contactRepo, log)
	oppService := services.NewOpportunityService(oppRepo, customerRepo, productRepo, log)
	productService := services.NewProductService(productRepo, log)
	activityService := services.NewActivityService(activityRepo, log)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	leadHandler := handlers.NewLeadHandler(leadService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	oppHandler := handlers.NewOpportunityHandler(oppService)
	productHandler := handlers.NewProductHandler(productService)
	activityHandler := handlers.NewActivityHandler(activityService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (reads for managers, writes admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// Lead routes (Sales staff)
	leadRoutes := apiV1.Group("/leads")
	leadRoutes.Use(middleware.AuthMiddleware(cfg))
	leadRoutes.Use(middleware.SalesStaff())
	setupLeadRoutes(leadRoutes, leadHandler)

	// Customer routes (Sales staff)
	customerRoutes := apiV1.Group("/customers")
	customerRoutes.Use(middleware.AuthMiddleware(cfg))
	customerRoutes.Use(middleware.SalesStaff())
	setupCustomerRoutes(customerRoutes, customerHandler)

	// Opportunity routes (Sales staff)
	oppRoutes := apiV1.Group("/opportunities")
	oppRoutes.Use(middleware.AuthMiddleware(cfg))
	oppRoutes.Use(middleware.SalesStaff())
	setupOpportunityRoutes(oppRoutes, oppHandler)

	// Product catalogue routes (read for sales staff, write for managers)
	productRoutes := apiV1.Group("/products")
	productRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProductRoutes(productRoutes, productHandler)

	// Activity routes (Sales staff)
	activityRoutes := apiV1.Group("/activities")
	activityRoutes.Use(middleware.AuthMiddleware(cfg))
	activityRoutes.Use(middleware.SalesStaff())
	setupActivityRoutes(activityRoutes, activityHandler)

	// Dashboard routes
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes; the per-IP limiter slows credential stuffing while the
	// per-account lockout handles targeted guessing
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
	router.Post("/change-password", middleware.AuthMiddleware(cfg), handler.ChangePassword)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", middleware.ManagerOrAdmin(), handler.ListUsers)
	router.Get("/permissions", middleware.ManagerOrAdmin(), handler.ListPermissions)
	router.Get("/:id", middleware.ManagerOrAdmin(), handler.GetUser)

	router.Post("/", middleware.AdminOnly(), handler.CreateUser)
	router.Put("/:id", middleware.AdminOnly(), handler.UpdateUser)
	router.Delete("/:id", middleware.AdminOnly(), handler.DeleteUser)
	router.Post("/:id/reset-password", middleware.AdminOnly(), handler.ResetPassword)
	router.Post("/:id/unlock", middleware.AdminOnly(), handler.UnlockUser)
	router.Post("/:id/permissions", middleware.AdminOnly(), handler.GrantPermission)
	router.Delete("/:id/permissions", middleware.AdminOnly(), handler.RevokePermission)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
}

// setupLeadRoutes configures lead routes
func setupLeadRoutes(router fiber.Router, handler *handlers.LeadHandler) {
	router.Post("/", handler.CreateLead)
	router.Get("/", handler.ListLeads)
	router.Get("/search", handler.SearchLeads)
	router.Get("/:id", handler.GetLead)
	router.Put("/:id", handler.UpdateLead)
	router.Delete("/:id", middleware.ManagerOrAdmin(), handler.DeleteLead)
	router.Post("/:id/assign", handler.AssignLead)
	router.Post("/:id/qualify", handler.QualifyLead)
	router.Post("/:id/convert", middleware.RequireAuthority("ROLE_MANAGER", "ROLE_ADMIN", "leads.convert"), handler.ConvertLead)
}

// setupCustomerRoutes configures customer and contact routes
func setupCustomerRoutes(router fiber.Router, handler *handlers.CustomerHandler) {
	router.Post("/", handler.CreateCustomer)
	router.Get("/", handler.ListCustomers)
	router.Get("/search", handler.SearchCustomers)
	router.Get("/:id", handler.GetCustomer)
	router.Put("/:id", handler.UpdateCustomer)
	router.Delete("/:id", middleware.ManagerOrAdmin(), handler.DeleteCustomer)

	// Contacts
	router.Get("/:id/contacts", handler.ListContacts)
	router.Post("/:id/contacts", handler.AddContact)
	router.Put("/:id/contacts/:contactId", handler.UpdateContact)
	router.Delete("/:id/contacts/:contactId", handler.RemoveContact)
}

// setupOpportunityRoutes configures opportunity routes
func setupOpportunityRoutes(router fiber.Router, handler *handlers.OpportunityHandler) {
	router.Post("/", handler.CreateOpportunity)
	router.Get("/", handler.ListOpportunities)
	router.Get("/overdue", handler.ListOverdue)
	router.Get("/:id", handler.GetOpportunity)
	router.Put("/:id", handler.UpdateOpportunity)
	router.Delete("/:id", middleware.ManagerOrAdmin(), handler.DeleteOpportunity)
	router.Post("/:id/advance", handler.AdvanceStage)
	router.Post("/:id/close", handler.Close)

	// Line items
	router.Post("/:id/products", handler.AddLineItem)
	router.Put("/:id/products/:itemId", handler.UpdateLineItem)
	router.Delete("/:id/products/:itemId", handler.RemoveLineItem)
}

// setupProductRoutes configures product catalogue routes
func setupProductRoutes(router fiber.Router, handler *handlers.ProductHandler) {
	router.Get("/", middleware.SalesStaff(), handler.ListProducts)
	router.Get("/:id", middleware.SalesStaff(), handler.GetProduct)

	router.Post("/", middleware.ManagerOrAdmin(), handler.CreateProduct)
	router.Put("/:id", middleware.ManagerOrAdmin(), handler.UpdateProduct)
	router.Delete("/:id", middleware.ManagerOrAdmin(), handler.DeleteProduct)
}

// setupActivityRoutes configures activity routes
func setupActivityRoutes(router fiber.Router, handler *handlers.ActivityHandler) {
	router.Post("/", handler.CreateActivity)
	router.Get("/", handler.ListActivities)
	router.Get("/upcoming", handler.ListUpcoming)
	router.Get("/overdue", handler.ListOverdue)
	router.Get("/:id", handler.GetActivity)
	router.Put("/:id", handler.UpdateActivity)
	router.Delete("/:id", handler.DeleteActivity)
	router.Post("/:id/complete", handler.CompleteActivity)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	// Personal dashboard (all authenticated users)
	router.Get("/me", handler.GetMyDashboard)

	// Team dashboard (Manager/Admin only)
	router.Get("/", middleware.ManagerOrAdmin(), handler.GetSalesDashboard)
}
