package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/domain/payroll"
	"framasa/internal/infrastructure/http/v1/dto"
)

// PayrollHandler serves payroll sheets.
type PayrollHandler struct {
	*BaseHandler
	service *payroll.Service
}

// NewPayrollHandler creates the payroll handler.
func NewPayrollHandler(base *BaseHandler, service *payroll.Service) *PayrollHandler {
	return &PayrollHandler{BaseHandler: base, service: service}
}

// Create handles POST /payroll
func (h *PayrollHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePayrollSheetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sheet, err := h.service.Create(ctx, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, sheet)
}

// Get handles GET /payroll/:id
func (h *PayrollHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	sheetID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	sheet, err := h.service.Get(ctx, sheetID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sheet)
}

// List handles GET /payroll
func (h *PayrollHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PayrollListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	filter := payroll.Filter{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != "" {
		status := payroll.SheetStatus(req.Status)
		filter.Status = &status
	}
	var ok bool
	if filter.From, ok = h.ParseTimeParam(c, "from", req.From); !ok {
		return
	}
	if filter.To, ok = h.ParseTimeParam(c, "to", req.To); !ok {
		return
	}

	sheets, total, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      sheets,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// UpdateLines handles PUT /payroll/:id/lines
func (h *PayrollHandler) UpdateLines(c *gin.Context) {
	ctx := c.Request.Context()

	sheetID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdatePayrollLinesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inputs, err := req.ToInputs()
	if err != nil {
		h.Error(c, err)
		return
	}

	sheet, err := h.service.UpdateLines(ctx, sheetID, inputs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sheet)
}

// Close handles POST /payroll/:id/close
func (h *PayrollHandler) Close(c *gin.Context) {
	ctx := c.Request.Context()

	sheetID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	sheet, err := h.service.Close(ctx, sheetID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sheet)
}

// RegisterRoutes registers payroll routes.
func (h *PayrollHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id/lines", h.UpdateLines)
	rg.POST("/:id/close", h.Close)
}
