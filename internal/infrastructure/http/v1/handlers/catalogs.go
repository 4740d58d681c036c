package handlers

import (
	"github.com/gin-gonic/gin"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/domain"
	"framasa/internal/domain/catalogs/category"
	"framasa/internal/domain/catalogs/employee"
	"framasa/internal/domain/catalogs/machinery"
	"framasa/internal/domain/catalogs/truck"
	"framasa/internal/domain/catalogs/unit"
	"framasa/internal/infrastructure/http/v1/dto"
)

// NewCategoryHandler builds the product category handler.
func NewCategoryHandler(base *BaseHandler, service *domain.CatalogService[*category.Category]) *CatalogHandler[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest] {
	return NewCatalogHandler(base, CatalogHandlerConfig[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]{
		Service:    service,
		EntityName: "category",
		MapCreateDTO: func(d dto.CreateCategoryRequest) *category.Category {
			return d.ToCategory()
		},
		MapUpdateDTO: func(d dto.UpdateCategoryRequest, existing *category.Category) *category.Category {
			return d.ApplyTo(existing)
		},
		MapToDTO: func(c *category.Category) any {
			return dto.FromCategory(c)
		},
	})
}

// NewUnitHandler builds the measurement unit handler.
func NewUnitHandler(base *BaseHandler, service *domain.CatalogService[*unit.Unit]) *CatalogHandler[*unit.Unit, dto.CreateUnitRequest, dto.UpdateUnitRequest] {
	return NewCatalogHandler(base, CatalogHandlerConfig[*unit.Unit, dto.CreateUnitRequest, dto.UpdateUnitRequest]{
		Service:    service,
		EntityName: "unit",
		MapCreateDTO: func(d dto.CreateUnitRequest) *unit.Unit {
			return d.ToUnit()
		},
		MapUpdateDTO: func(d dto.UpdateUnitRequest, existing *unit.Unit) *unit.Unit {
			return d.ApplyTo(existing)
		},
		MapToDTO: func(u *unit.Unit) any {
			return dto.FromUnit(u)
		},
	})
}

// NewEmployeeHandler builds the employee handler.
func NewEmployeeHandler(base *BaseHandler, service *domain.CatalogService[*employee.Employee]) *CatalogHandler[*employee.Employee, dto.CreateEmployeeRequest, dto.UpdateEmployeeRequest] {
	return NewCatalogHandler(base, CatalogHandlerConfig[*employee.Employee, dto.CreateEmployeeRequest, dto.UpdateEmployeeRequest]{
		Service:    service,
		EntityName: "employee",
		MapCreateDTO: func(d dto.CreateEmployeeRequest) *employee.Employee {
			return d.ToEmployee()
		},
		MapUpdateDTO: func(d dto.UpdateEmployeeRequest, existing *employee.Employee) *employee.Employee {
			return d.ApplyTo(existing)
		},
		MapToDTO: func(e *employee.Employee) any {
			return dto.FromEmployee(e)
		},
	})
}

// TruckHandler extends the generic catalog handler with status
// transitions for the delivery fleet.
type TruckHandler struct {
	*CatalogHandler[*truck.Truck, dto.CreateTruckRequest, dto.UpdateTruckRequest]
	service *truck.Service
}

// NewTruckHandler builds the truck handler.
func NewTruckHandler(base *BaseHandler, service *truck.Service) *TruckHandler {
	inner := NewCatalogHandler(base, CatalogHandlerConfig[*truck.Truck, dto.CreateTruckRequest, dto.UpdateTruckRequest]{
		Service:    service.CatalogService,
		EntityName: "truck",
		MapCreateDTO: func(d dto.CreateTruckRequest) *truck.Truck {
			return d.ToTruck()
		},
		MapUpdateDTO: func(d dto.UpdateTruckRequest, existing *truck.Truck) *truck.Truck {
			return d.ApplyTo(existing)
		},
		MapToDTO: func(t *truck.Truck) any {
			return dto.FromTruck(t)
		},
	})
	return &TruckHandler{CatalogHandler: inner, service: service}
}

// SetStatus handles POST /trucks/:id/status
func (h *TruckHandler) SetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	truckID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetTruckStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := h.service.SetStatus(ctx, truckID, truck.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTruck(t))
}

// MachineryHandler extends the generic catalog handler with status
// transitions and usage counters for heavy equipment.
type MachineryHandler struct {
	*CatalogHandler[*machinery.Machinery, dto.CreateMachineryRequest, dto.UpdateMachineryRequest]
	service *machinery.Service
}

// NewMachineryHandler builds the machinery handler.
func NewMachineryHandler(base *BaseHandler, service *machinery.Service) *MachineryHandler {
	inner := NewCatalogHandler(base, CatalogHandlerConfig[*machinery.Machinery, dto.CreateMachineryRequest, dto.UpdateMachineryRequest]{
		Service:    service.CatalogService,
		EntityName: "machinery",
		MapCreateDTO: func(d dto.CreateMachineryRequest) *machinery.Machinery {
			return d.ToMachinery()
		},
		MapUpdateDTO: func(d dto.UpdateMachineryRequest, existing *machinery.Machinery) *machinery.Machinery {
			return d.ApplyTo(existing)
		},
		MapToDTO: func(m *machinery.Machinery) any {
			return dto.FromMachinery(m)
		},
	})
	return &MachineryHandler{CatalogHandler: inner, service: service}
}

// SetStatus handles POST /machinery/:id/status
func (h *MachineryHandler) SetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	machineryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetMachineryStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.SetStatus(ctx, machineryID, machinery.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMachinery(m))
}

// RecordUsage handles POST /machinery/:id/usage
func (h *MachineryHandler) RecordUsage(c *gin.Context) {
	ctx := c.Request.Context()

	machineryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.RecordMachineryUsageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.RecordUsage(ctx, machineryID, req.Hours, req.Km)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMachinery(m))
}
