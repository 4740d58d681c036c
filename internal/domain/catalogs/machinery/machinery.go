// Package machinery provides the heavy equipment catalog shared by all
// business lines. Trucks are not machinery; the aggregates fleet has
// its own catalog.
package machinery

import (
	"context"
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/entity"
	"framasa/internal/core/id"
	"framasa/internal/core/tx"
	"framasa/internal/domain"
	"framasa/internal/domain/inventory"
)

// Kind classifies a machine.
type Kind string

const (
	KindExcavator  Kind = "EXCAVADORA"
	KindBackhoe    Kind = "RETROEXCAVADORA"
	KindLoader     Kind = "CARGADOR"
	KindCompactor  Kind = "COMPACTADORA"
	KindVibrator   Kind = "VIBRADOR"
	KindMixer      Kind = "MEZCLADORA"
	KindCutter     Kind = "CORTADORA"
	KindGenerator  Kind = "GENERADOR"
	KindCompressor Kind = "COMPRESOR"
	KindWelder     Kind = "SOLDADORA"
	KindOther      Kind = "OTRO"
)

// Valid reports whether the kind is a known machine type.
func (k Kind) Valid() bool {
	switch k {
	case KindExcavator, KindBackhoe, KindLoader, KindCompactor,
		KindVibrator, KindMixer, KindCutter, KindGenerator,
		KindCompressor, KindWelder, KindOther:
		return true
	}
	return false
}

// Status describes machine availability.
type Status string

const (
	StatusOperational  Status = "OPERATIONAL"
	StatusMaintenance  Status = "MAINTENANCE"
	StatusOutOfService Status = "OUT_OF_SERVICE"
)

// Machinery is a piece of heavy equipment assigned to one business
// line. OperatingHours and Mileage only ever grow.
type Machinery struct {
	entity.Catalog

	// Domain is the business line the machine belongs to
	Domain inventory.Domain `db:"domain" json:"domain"`

	Kind  Kind   `db:"kind" json:"kind"`
	Make  string `db:"make" json:"make,omitempty"`
	Model string `db:"model" json:"model,omitempty"`

	SerialNumber *string `db:"serial_number" json:"serialNumber,omitempty"`
	Year         int     `db:"year" json:"year,omitempty"`

	Status Status `db:"status" json:"status"`

	LastMaintenanceAt *time.Time `db:"last_maintenance_at" json:"lastMaintenanceAt,omitempty"`
	NextMaintenanceAt *time.Time `db:"next_maintenance_at" json:"nextMaintenanceAt,omitempty"`

	OperatingHours int `db:"operating_hours" json:"operatingHours"`
	Mileage        int `db:"mileage" json:"mileage"`

	InsuranceValid bool `db:"insurance_valid" json:"insuranceValid"`
	DocumentsValid bool `db:"documents_valid" json:"documentsValid"`

	Location *string `db:"location" json:"location,omitempty"`
	Notes    *string `db:"notes" json:"notes,omitempty"`

	Active bool `db:"active" json:"active"`
}

// NewMachinery creates an operational machine for a business line.
func NewMachinery(d inventory.Domain, kind Kind, code, name string) *Machinery {
	return &Machinery{
		Catalog:        entity.NewCatalog(code, name),
		Domain:         d,
		Kind:           kind,
		Status:         StatusOperational,
		InsuranceValid: true,
		DocumentsValid: true,
		Active:         true,
	}
}

// Available reports whether the machine can be put to work.
func (m *Machinery) Available() bool {
	return m.Status == StatusOperational && m.Active && !m.DeletionMark
}

// MaintenanceDue reports whether the scheduled maintenance date has
// passed.
func (m *Machinery) MaintenanceDue(now time.Time) bool {
	return m.NextMaintenanceAt != nil && now.After(*m.NextMaintenanceAt)
}

// AddUsage accumulates operating hours and mileage.
func (m *Machinery) AddUsage(hours, km int) error {
	if hours < 0 || km < 0 {
		return apperror.NewValidation("usage cannot be negative").
			WithDetail("hours", hours).
			WithDetail("km", km)
	}
	m.OperatingHours += hours
	m.Mileage += km
	return nil
}

func (m *Machinery) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}
	if !m.Domain.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown business line: %q", m.Domain)).
			WithDetail("field", "domain")
	}
	if !m.Kind.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown machinery kind: %q", m.Kind)).
			WithDetail("field", "kind")
	}
	switch m.Status {
	case StatusOperational, StatusMaintenance, StatusOutOfService:
	default:
		return apperror.NewValidation(fmt.Sprintf("unknown machinery status: %q", m.Status)).
			WithDetail("field", "status")
	}
	if m.Year != 0 && m.Year < 1900 {
		return apperror.NewValidation("year must be 1900 or later").
			WithDetail("field", "year")
	}
	if m.OperatingHours < 0 {
		return apperror.NewValidation("operating hours cannot be negative").
			WithDetail("field", "operatingHours")
	}
	if m.Mileage < 0 {
		return apperror.NewValidation("mileage cannot be negative").
			WithDetail("field", "mileage")
	}
	return nil
}

// Repository is the persistence contract for machinery.
type Repository interface {
	domain.CatalogRepository[*Machinery]
}

// Service adds status transitions and usage tracking on top of the
// generic catalog service.
type Service struct {
	*domain.CatalogService[*Machinery]
	repo Repository
}

// NewService creates the machinery service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Machinery]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "machinery",
	})
	return &Service{CatalogService: base, repo: repo}
}

// SetStatus moves the machine to a new availability status. Leaving
// the shop stamps the maintenance time and clears the schedule.
func (s *Service) SetStatus(ctx context.Context, machineryID id.ID, status Status) (*Machinery, error) {
	m, err := s.GetByID(ctx, machineryID)
	if err != nil {
		return nil, err
	}
	if m.Status == StatusMaintenance && status == StatusOperational {
		now := time.Now().UTC()
		m.LastMaintenanceAt = &now
		m.NextMaintenanceAt = nil
	}
	m.Status = status
	if err := s.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordUsage adds operating hours and mileage to the machine counters.
func (s *Service) RecordUsage(ctx context.Context, machineryID id.ID, hours, km int) (*Machinery, error) {
	m, err := s.GetByID(ctx, machineryID)
	if err != nil {
		return nil, err
	}
	if err := m.AddUsage(hours, km); err != nil {
		return nil, err
	}
	if err := s.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
