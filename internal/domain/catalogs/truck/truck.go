// Package truck provides the delivery truck catalog used by the
// aggregates line.
package truck

import (
	"context"
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/entity"
	"framasa/internal/core/id"
	"framasa/internal/core/tx"
	"framasa/internal/core/types"
	"framasa/internal/domain"
)

// Status describes truck availability.
type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusMaintenance  Status = "MAINTENANCE"
	StatusOutOfService Status = "OUT_OF_SERVICE"
)

// Truck is a vehicle in the aggregates delivery fleet. Code holds the
// license plate.
type Truck struct {
	entity.Catalog

	Make  string `db:"make" json:"make,omitempty"`
	Model string `db:"model" json:"model,omitempty"`
	Year  int    `db:"year" json:"year,omitempty"`

	// CapacityM3 is the bed capacity in cubic meters
	CapacityM3 types.Quantity `db:"capacity_m3" json:"capacityM3"`

	Status Status `db:"status" json:"status"`

	LastMaintenanceAt  *time.Time `db:"last_maintenance_at" json:"lastMaintenanceAt,omitempty"`
	InsuranceExpiresAt *time.Time `db:"insurance_expires_at" json:"insuranceExpiresAt,omitempty"`
	InspectionExpires  *time.Time `db:"inspection_expires_at" json:"inspectionExpiresAt,omitempty"`
}

// NewTruck creates an active Truck keyed by license plate.
func NewTruck(plate, name string) *Truck {
	return &Truck{
		Catalog: entity.NewCatalog(plate, name),
		Status:  StatusActive,
	}
}

// Available reports whether the truck can take deliveries.
func (t *Truck) Available() bool {
	return t.Status == StatusActive && !t.DeletionMark
}

func (t *Truck) Validate(ctx context.Context) error {
	if err := t.Catalog.Validate(ctx); err != nil {
		return err
	}
	switch t.Status {
	case StatusActive, StatusMaintenance, StatusOutOfService:
	default:
		return apperror.NewValidation(fmt.Sprintf("unknown truck status: %q", t.Status)).
			WithDetail("field", "status")
	}
	if t.CapacityM3.IsNegative() {
		return apperror.NewValidation("capacity cannot be negative").
			WithDetail("field", "capacityM3")
	}
	return nil
}

// Repository is the persistence contract for trucks.
type Repository interface {
	domain.CatalogRepository[*Truck]
}

// Service adds status transitions on top of the generic catalog service.
type Service struct {
	*domain.CatalogService[*Truck]
	repo Repository
}

// NewService creates the truck service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Truck]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "truck",
	})
	return &Service{CatalogService: base, repo: repo}
}

// SetStatus moves the truck to a new availability status and stamps
// maintenance time when it leaves the shop.
func (s *Service) SetStatus(ctx context.Context, truckID id.ID, status Status) (*Truck, error) {
	t, err := s.GetByID(ctx, truckID)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusMaintenance && status == StatusActive {
		now := time.Now().UTC()
		t.LastMaintenanceAt = &now
	}
	t.Status = status
	if err := s.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
