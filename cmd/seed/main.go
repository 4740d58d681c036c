// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"framasa/internal/core/apperror"
	"framasa/internal/core/types"
	"framasa/internal/domain/auth"
	"framasa/internal/domain/catalogs/category"
	"framasa/internal/domain/catalogs/client"
	"framasa/internal/domain/catalogs/employee"
	"framasa/internal/domain/catalogs/truck"
	"framasa/internal/domain/catalogs/unit"
	"framasa/internal/domain/inventory"
	"framasa/internal/infrastructure/storage/postgres"
	"framasa/internal/infrastructure/storage/postgres/auth_repo"
	"framasa/internal/infrastructure/storage/postgres/catalog_repo"
	"framasa/internal/infrastructure/storage/postgres/register_repo"
	"framasa/pkg/logger"
	"framasa/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txm, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, txm, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@framasa.hn"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	users := auth_repo.NewUserRepo(txm)

	existing, err := users.GetByUsername(ctx, adminUsername)
	if err == nil {
		log.Infow("admin user already exists", "username", adminUsername, "user_id", existing.ID)
		return nil
	}
	if !apperror.IsNotFound(err) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := auth.NewUser(adminUsername, adminEmail, string(passwordHash))
	admin.FirstName = "System"
	admin.LastName = "Admin"
	admin.IsAdmin = true

	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created",
		"username", adminUsername,
		"user_id", admin.ID,
	)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, txm *postgres.TxManager, log *logger.Logger) error {
	log.Info("seeding demo data...")

	num := numerator.New(pool)

	// 1. Units (hardware line)
	unitService := unit.NewService(catalog_repo.NewUnitRepo(txm), txm)
	units := []struct {
		code       string
		name       string
		symbol     string
		fractional bool
	}{
		{"UN-PZ", "Pieza", "pz", false},
		{"UN-BOLSA", "Bolsa", "bolsa", false},
		{"UN-LB", "Libra", "lb", true},
		{"UN-GAL", "Galon", "gal", true},
		{"UN-M3", "Metro cubico", "m3", true},
	}
	unitIDs := make(map[string]string)
	for _, u := range units {
		if existing, err := unitService.GetByCode(ctx, u.code); err == nil {
			unitIDs[u.code] = existing.ID.String()
			continue
		}
		entry := unit.NewUnit(u.code, u.name, u.symbol)
		entry.Fractional = u.fractional
		if err := unitService.Create(ctx, entry); err != nil {
			log.Warnw("failed to seed unit", "code", u.code, "error", err)
			continue
		}
		unitIDs[u.code] = entry.ID.String()
	}

	// 2. Categories (hardware line)
	categoryService := category.NewService(catalog_repo.NewCategoryRepo(txm), txm)
	categories := []struct{ code, name string }{
		{"CAT-HERR", "Herramientas"},
		{"CAT-ELEC", "Material electrico"},
		{"CAT-PLOM", "Plomeria"},
		{"CAT-PINT", "Pinturas"},
	}
	categoryIDs := make(map[string]string)
	for _, c := range categories {
		if existing, err := categoryService.GetByCode(ctx, c.code); err == nil {
			categoryIDs[c.code] = existing.ID.String()
			continue
		}
		entry := category.NewCategory(c.code, c.name)
		if err := categoryService.Create(ctx, entry); err != nil {
			log.Warnw("failed to seed category", "code", c.code, "error", err)
			continue
		}
		categoryIDs[c.code] = entry.ID.String()
	}

	// 3. Clients
	clientService := client.NewService(catalog_repo.NewClientRepo(txm), txm, num)
	clients := []struct {
		name   string
		taxID  string
		credit float64
	}{
		{"Constructora del Valle S.A.", "08011985123960", 50000},
		{"Ferreteria El Martillo", "05011990456780", 0},
		{"Juan Carlos Mejia", "08011975987120", 10000},
	}
	for _, c := range clients {
		if _, err := clientService.FindByTaxID(ctx, c.taxID); err == nil {
			continue
		}
		taxID := c.taxID
		entry := client.NewClient("", c.name)
		entry.TaxID = &taxID
		if c.credit > 0 {
			entry.CreditEnabled = true
			entry.CreditLimit = types.NewMoney(c.credit)
		}
		if err := clientService.Create(ctx, entry); err != nil {
			log.Warnw("failed to seed client", "name", c.name, "error", err)
		}
	}

	// 4. Employees
	employeeService := employee.NewService(catalog_repo.NewEmployeeRepo(txm), txm)
	employees := []struct {
		code, name, position string
		wage                 float64
	}{
		{"EMP-001", "Pedro Martinez", "Bodeguero", 450},
		{"EMP-002", "Maria Lopez", "Cajera", 420},
		{"EMP-003", "Carlos Rodriguez", "Motorista", 500},
		{"EMP-004", "Jose Hernandez", "Operador de planta", 550},
	}
	for _, e := range employees {
		if _, err := employeeService.GetByCode(ctx, e.code); err == nil {
			continue
		}
		entry := employee.NewEmployee(e.code, e.name, e.position, types.NewMoney(e.wage))
		if err := employeeService.Create(ctx, entry); err != nil {
			log.Warnw("failed to seed employee", "code", e.code, "error", err)
		}
	}

	// 5. Trucks (aggregates line)
	truckService := truck.NewService(catalog_repo.NewTruckRepo(txm), txm)
	trucks := []struct {
		plate, name, mk, model string
		year                   int
		capacity               float64
	}{
		{"HAA-1234", "Volqueta 1", "Mack", "Granite", 2018, 12},
		{"HAB-5678", "Volqueta 2", "Freightliner", "M2", 2020, 10},
	}
	for _, t := range trucks {
		if _, err := truckService.GetByCode(ctx, t.plate); err == nil {
			continue
		}
		entry := truck.NewTruck(t.plate, t.name)
		entry.Make = t.mk
		entry.Model = t.model
		entry.Year = t.year
		entry.CapacityM3 = types.NewQuantityFromFloat64(t.capacity)
		if err := truckService.Create(ctx, entry); err != nil {
			log.Warnw("failed to seed truck", "plate", t.plate, "error", err)
		}
	}

	// 6. Products per domain, with an opening stock entry through the ledger
	ledger, productServices, err := buildInventory(txm)
	if err != nil {
		return fmt.Errorf("build inventory: %w", err)
	}

	type productSeed struct {
		domain   inventory.Domain
		code     string
		name     string
		price    float64
		cost     float64
		stock    float64
		minStock float64
		prepare  func(*inventory.Product)
	}

	products := []productSeed{
		{
			domain: inventory.DomainHardware, code: "MART-001", name: "Martillo de una",
			price: 180, cost: 120, stock: 25, minStock: 5,
			prepare: func(p *inventory.Product) {
				if cid, ok := categoryIDs["CAT-HERR"]; ok {
					p.CategoryID = &cid
				}
				if uid, ok := unitIDs["UN-PZ"]; ok {
					p.UnitID = &uid
				}
			},
		},
		{
			domain: inventory.DomainHardware, code: "CEM-001", name: "Cemento gris 42.5kg",
			price: 215, cost: 185, stock: 300, minStock: 50,
			prepare: func(p *inventory.Product) {
				if uid, ok := unitIDs["UN-BOLSA"]; ok {
					p.UnitID = &uid
				}
			},
		},
		{
			domain: inventory.DomainBlocks, code: "BLQ-15", name: "Bloque de concreto 15x20x40",
			price: 14, cost: 9, stock: 5000, minStock: 1000,
			prepare: func(p *inventory.Product) {
				p.BlockType = "ESTANDAR"
				p.Dimensions = "15x20x40"
			},
		},
		{
			domain: inventory.DomainBlocks, code: "BLQ-10", name: "Bloque de concreto 10x20x40",
			price: 11, cost: 7, stock: 3000, minStock: 800,
			prepare: func(p *inventory.Product) {
				p.BlockType = "ESTANDAR"
				p.Dimensions = "10x20x40"
			},
		},
		{
			domain: inventory.DomainAggregates, code: "ARE-RIO", name: "Arena de rio",
			price: 350, cost: 200, stock: 120.5, minStock: 20,
			prepare: func(p *inventory.Product) {
				p.AggregateType = "ARENA"
				p.Granulometry = "0-4mm"
				p.Location = "Patio norte"
			},
		},
		{
			domain: inventory.DomainAggregates, code: "GRA-34", name: "Grava 3/4",
			price: 420, cost: 260, stock: 80, minStock: 15,
			prepare: func(p *inventory.Product) {
				p.AggregateType = "GRAVA"
				p.Granulometry = "19mm"
				p.Location = "Patio sur"
			},
		},
	}

	for _, seed := range products {
		service := productServices[seed.domain]
		if _, err := service.GetByCode(ctx, seed.code); err == nil {
			log.Infow("product already exists", "domain", seed.domain, "code", seed.code)
			continue
		}

		p := inventory.NewProduct(seed.domain, seed.code, seed.name)
		p.SalePrice = types.NewMoney(seed.price)
		p.UnitCost = types.NewMoney(seed.cost)
		p.MinStock = types.NewQuantityFromFloat64(seed.minStock)
		if seed.prepare != nil {
			seed.prepare(p)
		}

		if err := service.Create(ctx, p); err != nil {
			log.Warnw("failed to seed product", "code", seed.code, "error", err)
			continue
		}

		if seed.stock > 0 {
			_, err := ledger.RecordMovement(ctx, inventory.MovementRequest{
				Ref:      p.Ref(),
				Kind:     inventory.MovementEntry,
				Quantity: types.NewQuantityFromFloat64(seed.stock),
				Reason:   "inventario inicial",
				Actor:    "seed",
			})
			if err != nil {
				log.Warnw("failed to record opening stock", "code", seed.code, "error", err)
			}
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}

func buildInventory(txm *postgres.TxManager) (*inventory.Ledger, map[inventory.Domain]*inventory.ProductService, error) {
	products := make(map[inventory.Domain]inventory.ProductRepository, 3)
	services := make(map[inventory.Domain]*inventory.ProductService, 3)
	for _, d := range inventory.Domains() {
		repo, err := catalog_repo.NewProductRepo(txm, d)
		if err != nil {
			return nil, nil, err
		}
		products[d] = repo
		services[d] = inventory.NewProductService(d, repo, txm)
	}

	ledger, err := inventory.NewLedger(products, register_repo.NewMovementRepo(txm), txm)
	if err != nil {
		return nil, nil, err
	}
	return ledger, services, nil
}
