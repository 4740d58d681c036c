package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/domain/billing"
	"framasa/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler serves the invoice lifecycle: issue, pay, void.
type InvoiceHandler struct {
	*BaseHandler
	service *billing.Service
}

// NewInvoiceHandler creates the invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *billing.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.CreateInvoice(ctx, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	inv, err := h.service.GetInvoice(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, inv)
}

// GetByNumber handles GET /invoices/by-number/:number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	ctx := c.Request.Context()

	inv, err := h.service.GetInvoiceByNumber(ctx, c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, inv)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.InvoiceListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	filter := billing.InvoiceFilter{
		Search: req.Search,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != "" {
		status := billing.InvoiceStatus(req.Status)
		filter.Status = &status
	}
	if req.Company != "" {
		company := billing.Company(req.Company)
		if !company.Valid() {
			h.Error(c, apperror.NewValidation("unknown company"))
			return
		}
		filter.Company = &company
	}
	if req.ClientID != "" {
		clientID, err := id.Parse(req.ClientID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid clientId"))
			return
		}
		filter.ClientID = &clientID
	}
	var ok bool
	if filter.From, ok = h.ParseTimeParam(c, "from", req.From); !ok {
		return
	}
	if filter.To, ok = h.ParseTimeParam(c, "to", req.To); !ok {
		return
	}

	invoices, total, err := h.service.ListInvoices(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      invoices,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// AddPayments handles POST /invoices/:id/payments
func (h *InvoiceHandler) AddPayments(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AddPaymentsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inputs, err := req.ToInputs()
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.AddPayments(ctx, invoiceID, inputs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, inv)
}

// Void handles POST /invoices/:id/void
func (h *InvoiceHandler) Void(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.VoidInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.VoidInvoice(ctx, invoiceID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, inv)
}

// RegisterRoutes registers invoice routes.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/by-number/:number", h.GetByNumber)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/payments", h.AddPayments)
	rg.POST("/:id/void", h.Void)
}
