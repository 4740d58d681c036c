package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/domain/billing"
	"framasa/internal/infrastructure/http/v1/dto"
)

// QuotationHandler serves the quotation lifecycle up to invoice
// conversion.
type QuotationHandler struct {
	*BaseHandler
	service *billing.Service
}

// NewQuotationHandler creates the quotation handler.
func NewQuotationHandler(base *BaseHandler, service *billing.Service) *QuotationHandler {
	return &QuotationHandler{BaseHandler: base, service: service}
}

// Create handles POST /quotations
func (h *QuotationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	q, err := h.service.CreateQuotation(ctx, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, q)
}

// Get handles GET /quotations/:id
func (h *QuotationHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	quotationID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	q, err := h.service.GetQuotation(ctx, quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, q)
}

// List handles GET /quotations
func (h *QuotationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.QuotationListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	filter := billing.QuotationFilter{
		Search: req.Search,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != "" {
		status := billing.QuotationStatus(req.Status)
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

	quotes, total, err := h.service.ListQuotations(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      quotes,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

func (h *QuotationHandler) transition(c *gin.Context, apply func(ctx *gin.Context, quotationID id.ID) (*billing.Quotation, error)) {
	quotationID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	q, err := apply(c, quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, q)
}

// Send handles POST /quotations/:id/send
func (h *QuotationHandler) Send(c *gin.Context) {
	h.transition(c, func(c *gin.Context, quotationID id.ID) (*billing.Quotation, error) {
		return h.service.SendQuotation(c.Request.Context(), quotationID)
	})
}

// Accept handles POST /quotations/:id/accept
func (h *QuotationHandler) Accept(c *gin.Context) {
	h.transition(c, func(c *gin.Context, quotationID id.ID) (*billing.Quotation, error) {
		return h.service.AcceptQuotation(c.Request.Context(), quotationID)
	})
}

// Reject handles POST /quotations/:id/reject
func (h *QuotationHandler) Reject(c *gin.Context) {
	h.transition(c, func(c *gin.Context, quotationID id.ID) (*billing.Quotation, error) {
		return h.service.RejectQuotation(c.Request.Context(), quotationID)
	})
}

// Convert handles POST /quotations/:id/convert
func (h *QuotationHandler) Convert(c *gin.Context) {
	ctx := c.Request.Context()

	quotationID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	inv, err := h.service.ConvertQuotation(ctx, quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// RegisterRoutes registers quotation routes.
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/send", h.Send)
	rg.POST("/:id/accept", h.Accept)
	rg.POST("/:id/reject", h.Reject)
	rg.POST("/:id/convert", h.Convert)
}
