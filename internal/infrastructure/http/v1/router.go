// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"framasa/internal/core/audit"
	"framasa/internal/core/entity"
	"framasa/internal/core/id"
	"framasa/internal/domain"
	"framasa/internal/domain/auth"
	"framasa/internal/domain/billing"
	"framasa/internal/domain/catalogs/category"
	"framasa/internal/domain/catalogs/client"
	"framasa/internal/domain/catalogs/employee"
	"framasa/internal/domain/catalogs/machinery"
	"framasa/internal/domain/catalogs/truck"
	"framasa/internal/domain/catalogs/unit"
	"framasa/internal/domain/inventory"
	"framasa/internal/domain/payroll"
	"framasa/internal/domain/reports"
	"framasa/internal/infrastructure/http/v1/handlers"
	"framasa/internal/infrastructure/http/v1/middleware"
	"framasa/internal/infrastructure/storage/postgres"
	"framasa/internal/infrastructure/storage/postgres/catalog_repo"
	"framasa/internal/infrastructure/storage/postgres/document_repo"
	"framasa/internal/infrastructure/storage/postgres/register_repo"
	"framasa/internal/infrastructure/storage/postgres/report_repo"
	"framasa/pkg/logger"
	"framasa/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Audit records entity change history; optional
	Audit *postgres.AuditService

	// Policy overrides the default document acceptance rule; optional
	Policy *billing.DocumentPolicy
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	txm := postgres.NewTxManager(cfg.Pool)
	num := numerator.New(cfg.Pool)
	baseHandler := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")

	registerAuthRoutes(v1, cfg, baseHandler)

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.Use(middleware.UserContext())

	ledger, productServices, err := buildInventory(txm, cfg.Audit)
	if err != nil {
		return nil, err
	}
	clientRepo := catalog_repo.NewClientRepo(txm)
	clientService := client.NewService(clientRepo, txm, num)
	registerAudit(clientService.CatalogService, cfg.Audit, "client")

	registerCatalogRoutes(protected, cfg, baseHandler, txm, clientService)
	registerInventoryRoutes(protected, baseHandler, ledger, productServices)
	registerBillingRoutes(protected, baseHandler, txm, num, ledger, clientRepo, cfg.Policy, cfg.Audit)
	registerPayrollRoutes(protected, baseHandler, txm, num)
	registerReportRoutes(protected, baseHandler, txm)

	if cfg.Audit != nil {
		auditHandler := handlers.NewAuditHandler(baseHandler, cfg.Audit)
		protected.GET("/audit/:entityType/:id", middleware.RequireAdmin(), auditHandler.GetHistory)
	}

	return router, nil
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig, baseHandler *handlers.BaseHandler) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	publicAuth := rg.Group("/auth")

	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
	protectedAuth.Use(middleware.UserContext())

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// buildInventory wires the product stores for all three domains plus
// the shared movement ledger.
func buildInventory(txm *postgres.TxManager, trail *postgres.AuditService) (*inventory.Ledger, map[inventory.Domain]*inventory.ProductService, error) {
	products := make(map[inventory.Domain]inventory.ProductRepository, 3)
	services := make(map[inventory.Domain]*inventory.ProductService, 3)
	for _, d := range inventory.Domains() {
		repo, err := catalog_repo.NewProductRepo(txm, d)
		if err != nil {
			return nil, nil, fmt.Errorf("build product repo for %s: %w", d, err)
		}
		products[d] = repo

		service := inventory.NewProductService(d, repo, txm)
		registerAudit(service.CatalogService, trail, "product")
		services[d] = service
	}

	movements := register_repo.NewMovementRepo(txm)
	ledger, err := inventory.NewLedger(products, movements, txm)
	if err != nil {
		return nil, nil, err
	}
	if trail != nil {
		ledger.SetAudit(trail)
	}
	return ledger, services, nil
}

// registerAudit attaches change-history hooks to a catalog service.
func registerAudit[T interface {
	entity.Validatable
	GetID() id.ID
}](service *domain.CatalogService[T], trail *postgres.AuditService, entityType string) {
	if trail == nil {
		return
	}
	service.Hooks().OnAfterCreate(func(ctx context.Context, e T) error {
		return trail.LogChange(ctx, entityType, e.GetID(), audit.ActionCreate, postgres.StructToMap(e))
	})
	service.Hooks().OnAfterUpdate(func(ctx context.Context, e T) error {
		return trail.LogChange(ctx, entityType, e.GetID(), audit.ActionUpdate, postgres.StructToMap(e))
	})
	service.Hooks().OnAfterDelete(func(ctx context.Context, e T) error {
		return trail.LogChange(ctx, entityType, e.GetID(), audit.ActionDelete, nil)
	})
}

// registerCatalogRoutes registers shared catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig, baseHandler *handlers.BaseHandler, txm *postgres.TxManager, clientService *client.Service) {
	catalogs := rg.Group("/catalog")

	// --- CLIENTS ---
	{
		handler := handlers.NewClientHandler(baseHandler, clientService)
		group := catalogs.Group("/clients")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-tax-id/:taxId", handler.GetByTaxID)
		group.POST("/:id/credit-limit", handler.SetCreditLimit)
	}

	// --- CATEGORIES ---
	{
		repo := catalog_repo.NewCategoryRepo(txm)
		service := category.NewService(repo, txm)
		registerAudit(service, cfg.Audit, "category")
		handler := handlers.NewCategoryHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/categories"), handler)
	}

	// --- UNITS ---
	{
		repo := catalog_repo.NewUnitRepo(txm)
		service := unit.NewService(repo, txm)
		registerAudit(service, cfg.Audit, "unit")
		handler := handlers.NewUnitHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/units"), handler)
	}

	// --- EMPLOYEES ---
	{
		repo := catalog_repo.NewEmployeeRepo(txm)
		service := employee.NewService(repo, txm)
		registerAudit(service, cfg.Audit, "employee")
		handler := handlers.NewEmployeeHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/employees"), handler)
	}

	// --- TRUCKS ---
	{
		repo := catalog_repo.NewTruckRepo(txm)
		service := truck.NewService(repo, txm)
		registerAudit(service.CatalogService, cfg.Audit, "truck")
		handler := handlers.NewTruckHandler(baseHandler, service)
		group := catalogs.Group("/trucks")
		RegisterCatalogRoutes(group, handler)
		group.POST("/:id/status", handler.SetStatus)
	}

	// --- MACHINERY ---
	{
		repo := catalog_repo.NewMachineryRepo(txm)
		service := machinery.NewService(repo, txm)
		registerAudit(service.CatalogService, cfg.Audit, "machinery")
		handler := handlers.NewMachineryHandler(baseHandler, service)
		group := catalogs.Group("/machinery")
		RegisterCatalogRoutes(group, handler)
		group.POST("/:id/status", handler.SetStatus)
		group.POST("/:id/usage", handler.RecordUsage)
	}
}

// registerInventoryRoutes registers per-domain product catalogs and the
// movement ledger.
func registerInventoryRoutes(rg *gin.RouterGroup, baseHandler *handlers.BaseHandler, ledger *inventory.Ledger, services map[inventory.Domain]*inventory.ProductService) {
	inv := rg.Group("/inventory")

	paths := map[inventory.Domain]string{
		inventory.DomainHardware:   "/hardware/products",
		inventory.DomainBlocks:     "/blocks/products",
		inventory.DomainAggregates: "/aggregates/products",
	}
	for _, d := range inventory.Domains() {
		handler := handlers.NewProductHandler(baseHandler, services[d], ledger)
		group := inv.Group(paths[d])
		group.GET("/low-stock", handler.LowStock)
		RegisterCatalogRoutes(group, handler)
	}

	movementHandler := handlers.NewMovementHandler(baseHandler, ledger)
	movementHandler.RegisterRoutes(inv.Group("/movements"))
}

// registerBillingRoutes registers invoice and quotation endpoints.
func registerBillingRoutes(rg *gin.RouterGroup, baseHandler *handlers.BaseHandler, txm *postgres.TxManager, num *numerator.Service, ledger *inventory.Ledger, clients client.Repository, policy *billing.DocumentPolicy, trail *postgres.AuditService) {
	invoices := document_repo.NewInvoiceRepo(txm)
	quotes := document_repo.NewQuotationRepo(txm)

	cfg := billing.Config{
		Invoices:  invoices,
		Quotes:    quotes,
		Clients:   clients,
		Ledger:    ledger,
		Numerator: num,
		Policy:    policy,
		TxManager: txm,
	}
	if trail != nil {
		cfg.Audit = trail
	}
	service := billing.NewService(cfg)

	invoiceHandler := handlers.NewInvoiceHandler(baseHandler, service)
	invoiceHandler.RegisterRoutes(rg.Group("/invoices"))

	quotationHandler := handlers.NewQuotationHandler(baseHandler, service)
	quotationHandler.RegisterRoutes(rg.Group("/quotations"))
}

// registerPayrollRoutes registers payroll sheet endpoints.
func registerPayrollRoutes(rg *gin.RouterGroup, baseHandler *handlers.BaseHandler, txm *postgres.TxManager, num *numerator.Service) {
	sheets := document_repo.NewPayrollRepo(txm)
	employees := catalog_repo.NewEmployeeRepo(txm)
	service := payroll.NewService(sheets, employees, num, txm)

	handler := handlers.NewPayrollHandler(baseHandler, service)
	handler.RegisterRoutes(rg.Group("/payroll"))
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, baseHandler *handlers.BaseHandler, txm *postgres.TxManager) {
	repo := report_repo.NewReportRepo(txm)
	service := reports.NewService(repo)

	handler := handlers.NewReportsHandler(baseHandler, service)
	handler.RegisterRoutes(rg.Group("/reports"))
}
