package handlers

import (
	"github.com/gin-gonic/gin"

	"framasa/internal/core/apperror"
	"framasa/internal/domain/billing"
	"framasa/internal/domain/inventory"
	"framasa/internal/domain/reports"
	"framasa/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

func (h *ReportsHandler) salesFilter(c *gin.Context) (reports.SalesFilter, bool) {
	var req dto.SalesReportRequest
	if !h.BindQuery(c, &req) {
		return reports.SalesFilter{}, false
	}

	var f reports.SalesFilter
	from, ok := h.ParseTimeParam(c, "from", req.From)
	if !ok {
		return f, false
	}
	to, ok := h.ParseTimeParam(c, "to", req.To)
	if !ok {
		return f, false
	}
	if from != nil {
		f.From = *from
	}
	if to != nil {
		f.To = *to
	}
	if req.Company != "" {
		company := billing.Company(req.Company)
		if !company.Valid() {
			h.Error(c, apperror.NewValidation("unknown company"))
			return f, false
		}
		f.Company = &company
	}
	return f, true
}

// GetSalesStats handles GET /reports/sales-stats
func (h *ReportsHandler) GetSalesStats(c *gin.Context) {
	ctx := c.Request.Context()

	f, ok := h.salesFilter(c)
	if !ok {
		return
	}

	stats, err := h.service.GetSalesStats(ctx, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stats)
}

// GetSalesTrend handles GET /reports/sales-trend
func (h *ReportsHandler) GetSalesTrend(c *gin.Context) {
	ctx := c.Request.Context()

	f, ok := h.salesFilter(c)
	if !ok {
		return
	}

	trend, err := h.service.GetSalesTrend(ctx, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, trend)
}

// GetLowStock handles GET /reports/low-stock
func (h *ReportsHandler) GetLowStock(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.service.GetLowStock(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// GetStockSummary handles GET /reports/stock-summary
func (h *ReportsHandler) GetStockSummary(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.service.GetStockSummary(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": summary})
}

// GetMovementTotals handles GET /reports/movement-totals
func (h *ReportsHandler) GetMovementTotals(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.MovementReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	var f reports.MovementFilter
	from, ok := h.ParseTimeParam(c, "from", req.From)
	if !ok {
		return
	}
	to, ok := h.ParseTimeParam(c, "to", req.To)
	if !ok {
		return
	}
	if from != nil {
		f.From = *from
	}
	if to != nil {
		f.To = *to
	}
	if req.Domain != "" {
		d, err := inventory.ParseDomain(req.Domain)
		if err != nil {
			h.Error(c, err)
			return
		}
		f.Domain = &d
	}

	totals, err := h.service.GetMovementTotals(ctx, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": totals})
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sales-stats", h.GetSalesStats)
	rg.GET("/sales-trend", h.GetSalesTrend)
	rg.GET("/low-stock", h.GetLowStock)
	rg.GET("/stock-summary", h.GetStockSummary)
	rg.GET("/movement-totals", h.GetMovementTotals)
}
