package dto

import (
	"time"

	"framasa/internal/core/types"
	"framasa/internal/domain/catalogs/category"
	"framasa/internal/domain/catalogs/employee"
	"framasa/internal/domain/catalogs/machinery"
	"framasa/internal/domain/catalogs/truck"
	"framasa/internal/domain/catalogs/unit"
	"framasa/internal/domain/inventory"
)

// --- Category ---

// CreateCategoryRequest for creating product categories.
type CreateCategoryRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	ParentID    *string `json:"parentId"`
	IsFolder    bool    `json:"isFolder"`
	Description *string `json:"description"`
}

// ToCategory converts to domain entity.
func (r *CreateCategoryRequest) ToCategory() *category.Category {
	c := category.NewCategory(r.Code, r.Name)
	c.ParentID = r.ParentID
	c.IsFolder = r.IsFolder
	c.Description = r.Description
	return c
}

// UpdateCategoryRequest for updating product categories.
type UpdateCategoryRequest struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	ParentID    *string `json:"parentId"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ApplyTo merges changed fields onto the existing entity.
func (r *UpdateCategoryRequest) ApplyTo(c *category.Category) *category.Category {
	if r.Code != nil {
		c.Code = *r.Code
	}
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.ParentID != nil {
		c.ParentID = r.ParentID
	}
	if r.Description != nil {
		c.Description = r.Description
	}
	c.Version = r.Version
	return c
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	CatalogResponse
	Description *string `json:"description,omitempty"`
}

// FromCategory creates response from domain entity.
func FromCategory(c *category.Category) *CategoryResponse {
	return &CategoryResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		Description:     c.Description,
	}
}

// --- Unit ---

// CreateUnitRequest for creating measurement units.
type CreateUnitRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name" binding:"required"`
	Symbol     string `json:"symbol" binding:"required"`
	Fractional bool   `json:"fractional"`
}

// ToUnit converts to domain entity.
func (r *CreateUnitRequest) ToUnit() *unit.Unit {
	u := unit.NewUnit(r.Code, r.Name, r.Symbol)
	u.Fractional = r.Fractional
	return u
}

// UpdateUnitRequest for updating measurement units.
type UpdateUnitRequest struct {
	Code       *string `json:"code"`
	Name       *string `json:"name"`
	Symbol     *string `json:"symbol"`
	Fractional *bool   `json:"fractional"`
	Version    int     `json:"version" binding:"required,min=1"`
}

// ApplyTo merges changed fields onto the existing entity.
func (r *UpdateUnitRequest) ApplyTo(u *unit.Unit) *unit.Unit {
	if r.Code != nil {
		u.Code = *r.Code
	}
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Symbol != nil {
		u.Symbol = *r.Symbol
	}
	if r.Fractional != nil {
		u.Fractional = *r.Fractional
	}
	u.Version = r.Version
	return u
}

// UnitResponse represents a unit in API responses.
type UnitResponse struct {
	CatalogResponse
	Symbol     string `json:"symbol"`
	Fractional bool   `json:"fractional"`
}

// FromUnit creates response from domain entity.
func FromUnit(u *unit.Unit) *UnitResponse {
	return &UnitResponse{
		CatalogResponse: FromCatalog(u.Catalog),
		Symbol:          u.Symbol,
		Fractional:      u.Fractional,
	}
}

// --- Employee ---

// CreateEmployeeRequest for creating employees.
type CreateEmployeeRequest struct {
	Code      string      `json:"code"`
	Name      string      `json:"name" binding:"required"`
	Position  string      `json:"position"`
	Phone     *string     `json:"phone"`
	DailyWage types.Money `json:"dailyWage"`
	HiredAt   *string     `json:"hiredAt"`
}

// ToEmployee converts to domain entity.
func (r *CreateEmployeeRequest) ToEmployee() *employee.Employee {
	e := employee.NewEmployee(r.Code, r.Name, r.Position, r.DailyWage)
	e.Phone = r.Phone
	e.HiredAt = r.HiredAt
	return e
}

// UpdateEmployeeRequest for updating employees.
type UpdateEmployeeRequest struct {
	Code      *string      `json:"code"`
	Name      *string      `json:"name"`
	Position  *string      `json:"position"`
	Phone     *string      `json:"phone"`
	DailyWage *types.Money `json:"dailyWage"`
	Active    *bool        `json:"active"`
	HiredAt   *string      `json:"hiredAt"`
	Version   int          `json:"version" binding:"required,min=1"`
}

// ApplyTo merges changed fields onto the existing entity.
func (r *UpdateEmployeeRequest) ApplyTo(e *employee.Employee) *employee.Employee {
	if r.Code != nil {
		e.Code = *r.Code
	}
	if r.Name != nil {
		e.Name = *r.Name
	}
	if r.Position != nil {
		e.Position = *r.Position
	}
	if r.Phone != nil {
		e.Phone = r.Phone
	}
	if r.DailyWage != nil {
		e.DailyWage = *r.DailyWage
	}
	if r.Active != nil {
		e.Active = *r.Active
	}
	if r.HiredAt != nil {
		e.HiredAt = r.HiredAt
	}
	e.Version = r.Version
	return e
}

// EmployeeResponse represents an employee in API responses.
type EmployeeResponse struct {
	CatalogResponse
	Position  string      `json:"position"`
	Phone     *string     `json:"phone,omitempty"`
	DailyWage types.Money `json:"dailyWage"`
	Active    bool        `json:"active"`
	HiredAt   *string     `json:"hiredAt,omitempty"`
}

// FromEmployee creates response from domain entity.
func FromEmployee(e *employee.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		CatalogResponse: FromCatalog(e.Catalog),
		Position:        e.Position,
		Phone:           e.Phone,
		DailyWage:       e.DailyWage,
		Active:          e.Active,
		HiredAt:         e.HiredAt,
	}
}

// --- Truck ---

// CreateTruckRequest for creating fleet trucks. Code is the plate.
type CreateTruckRequest struct {
	Plate      string         `json:"plate" binding:"required"`
	Name       string         `json:"name" binding:"required"`
	Make       string         `json:"make"`
	Model      string         `json:"model"`
	Year       int            `json:"year"`
	CapacityM3 types.Quantity `json:"capacityM3"`
}

// ToTruck converts to domain entity.
func (r *CreateTruckRequest) ToTruck() *truck.Truck {
	t := truck.NewTruck(r.Plate, r.Name)
	t.Make = r.Make
	t.Model = r.Model
	t.Year = r.Year
	t.CapacityM3 = r.CapacityM3
	return t
}

// UpdateTruckRequest for updating fleet trucks.
type UpdateTruckRequest struct {
	Name               *string         `json:"name"`
	Make               *string         `json:"make"`
	Model              *string         `json:"model"`
	Year               *int            `json:"year"`
	CapacityM3         *types.Quantity `json:"capacityM3"`
	InsuranceExpiresAt *time.Time      `json:"insuranceExpiresAt"`
	InspectionExpires  *time.Time      `json:"inspectionExpiresAt"`
	Version            int             `json:"version" binding:"required,min=1"`
}

// ApplyTo merges changed fields onto the existing entity.
func (r *UpdateTruckRequest) ApplyTo(t *truck.Truck) *truck.Truck {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Make != nil {
		t.Make = *r.Make
	}
	if r.Model != nil {
		t.Model = *r.Model
	}
	if r.Year != nil {
		t.Year = *r.Year
	}
	if r.CapacityM3 != nil {
		t.CapacityM3 = *r.CapacityM3
	}
	if r.InsuranceExpiresAt != nil {
		t.InsuranceExpiresAt = r.InsuranceExpiresAt
	}
	if r.InspectionExpires != nil {
		t.InspectionExpires = r.InspectionExpires
	}
	t.Version = r.Version
	return t
}

// SetTruckStatusRequest changes truck availability.
type SetTruckStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TruckResponse represents a truck in API responses.
type TruckResponse struct {
	CatalogResponse
	Make               string         `json:"make,omitempty"`
	Model              string         `json:"model,omitempty"`
	Year               int            `json:"year,omitempty"`
	CapacityM3         types.Quantity `json:"capacityM3"`
	Status             truck.Status   `json:"status"`
	Available          bool           `json:"available"`
	LastMaintenanceAt  *time.Time     `json:"lastMaintenanceAt,omitempty"`
	InsuranceExpiresAt *time.Time     `json:"insuranceExpiresAt,omitempty"`
	InspectionExpires  *time.Time     `json:"inspectionExpiresAt,omitempty"`
}

// FromTruck creates response from domain entity.
func FromTruck(t *truck.Truck) *TruckResponse {
	return &TruckResponse{
		CatalogResponse:    FromCatalog(t.Catalog),
		Make:               t.Make,
		Model:              t.Model,
		Year:               t.Year,
		CapacityM3:         t.CapacityM3,
		Status:             t.Status,
		Available:          t.Available(),
		LastMaintenanceAt:  t.LastMaintenanceAt,
		InsuranceExpiresAt: t.InsuranceExpiresAt,
		InspectionExpires:  t.InspectionExpires,
	}
}

// --- Machinery ---

// CreateMachineryRequest for creating heavy equipment entries.
type CreateMachineryRequest struct {
	Code         string  `json:"code"`
	Name         string  `json:"name" binding:"required"`
	Domain       string  `json:"domain" binding:"required"`
	Kind         string  `json:"kind" binding:"required"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	SerialNumber *string `json:"serialNumber"`
	Year         int     `json:"year"`
	Location     *string `json:"location"`
	Notes        *string `json:"notes"`
}

// ToMachinery converts to domain entity.
func (r *CreateMachineryRequest) ToMachinery() *machinery.Machinery {
	m := machinery.NewMachinery(inventory.Domain(r.Domain), machinery.Kind(r.Kind), r.Code, r.Name)
	m.Make = r.Make
	m.Model = r.Model
	m.SerialNumber = r.SerialNumber
	m.Year = r.Year
	m.Location = r.Location
	m.Notes = r.Notes
	return m
}

// UpdateMachineryRequest for updating heavy equipment entries.
type UpdateMachineryRequest struct {
	Code              *string    `json:"code"`
	Name              *string    `json:"name"`
	Make              *string    `json:"make"`
	Model             *string    `json:"model"`
	SerialNumber      *string    `json:"serialNumber"`
	Year              *int       `json:"year"`
	NextMaintenanceAt *time.Time `json:"nextMaintenanceAt"`
	InsuranceValid    *bool      `json:"insuranceValid"`
	DocumentsValid    *bool      `json:"documentsValid"`
	Location          *string    `json:"location"`
	Notes             *string    `json:"notes"`
	Active            *bool      `json:"active"`
	Version           int        `json:"version" binding:"required,min=1"`
}

// ApplyTo merges changed fields onto the existing entity.
func (r *UpdateMachineryRequest) ApplyTo(m *machinery.Machinery) *machinery.Machinery {
	if r.Code != nil {
		m.Code = *r.Code
	}
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.Make != nil {
		m.Make = *r.Make
	}
	if r.Model != nil {
		m.Model = *r.Model
	}
	if r.SerialNumber != nil {
		m.SerialNumber = r.SerialNumber
	}
	if r.Year != nil {
		m.Year = *r.Year
	}
	if r.NextMaintenanceAt != nil {
		m.NextMaintenanceAt = r.NextMaintenanceAt
	}
	if r.InsuranceValid != nil {
		m.InsuranceValid = *r.InsuranceValid
	}
	if r.DocumentsValid != nil {
		m.DocumentsValid = *r.DocumentsValid
	}
	if r.Location != nil {
		m.Location = r.Location
	}
	if r.Notes != nil {
		m.Notes = r.Notes
	}
	if r.Active != nil {
		m.Active = *r.Active
	}
	m.Version = r.Version
	return m
}

// SetMachineryStatusRequest changes machine availability.
type SetMachineryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RecordMachineryUsageRequest adds hours and mileage to the counters.
type RecordMachineryUsageRequest struct {
	Hours int `json:"hours"`
	Km    int `json:"km"`
}

// MachineryResponse represents a machine in API responses.
type MachineryResponse struct {
	CatalogResponse
	Domain            inventory.Domain `json:"domain"`
	Kind              machinery.Kind   `json:"kind"`
	Make              string           `json:"make,omitempty"`
	Model             string           `json:"model,omitempty"`
	SerialNumber      *string          `json:"serialNumber,omitempty"`
	Year              int              `json:"year,omitempty"`
	Status            machinery.Status `json:"status"`
	Available         bool             `json:"available"`
	LastMaintenanceAt *time.Time       `json:"lastMaintenanceAt,omitempty"`
	NextMaintenanceAt *time.Time       `json:"nextMaintenanceAt,omitempty"`
	OperatingHours    int              `json:"operatingHours"`
	Mileage           int              `json:"mileage"`
	InsuranceValid    bool             `json:"insuranceValid"`
	DocumentsValid    bool             `json:"documentsValid"`
	Location          *string          `json:"location,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
	Active            bool             `json:"active"`
}

// FromMachinery creates response from domain entity.
func FromMachinery(m *machinery.Machinery) *MachineryResponse {
	return &MachineryResponse{
		CatalogResponse:   FromCatalog(m.Catalog),
		Domain:            m.Domain,
		Kind:              m.Kind,
		Make:              m.Make,
		Model:             m.Model,
		SerialNumber:      m.SerialNumber,
		Year:              m.Year,
		Status:            m.Status,
		Available:         m.Available(),
		LastMaintenanceAt: m.LastMaintenanceAt,
		NextMaintenanceAt: m.NextMaintenanceAt,
		OperatingHours:    m.OperatingHours,
		Mileage:           m.Mileage,
		InsuranceValid:    m.InsuranceValid,
		DocumentsValid:    m.DocumentsValid,
		Location:          m.Location,
		Notes:             m.Notes,
		Active:            m.Active,
	}
}
