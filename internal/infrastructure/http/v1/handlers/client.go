package handlers

import (
	"github.com/gin-gonic/gin"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/domain/catalogs/client"
	"framasa/internal/infrastructure/http/v1/dto"
)

// ClientHandler extends the generic catalog handler with tax id lookup
// and credit management.
type ClientHandler struct {
	*CatalogHandler[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]
	service *client.Service
}

// NewClientHandler creates the client handler.
func NewClientHandler(base *BaseHandler, service *client.Service) *ClientHandler {
	inner := NewCatalogHandler(base, CatalogHandlerConfig[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]{
		Service:    service.CatalogService,
		EntityName: "client",
		MapCreateDTO: func(d dto.CreateClientRequest) *client.Client {
			return d.ToClient()
		},
		MapUpdateDTO: func(d dto.UpdateClientRequest, existing *client.Client) *client.Client {
			return d.ApplyTo(existing)
		},
		MapToDTO: func(c *client.Client) any {
			return dto.FromClient(c)
		},
	})
	return &ClientHandler{CatalogHandler: inner, service: service}
}

// GetByTaxID handles GET /clients/by-tax-id/:taxId
func (h *ClientHandler) GetByTaxID(c *gin.Context) {
	ctx := c.Request.Context()

	taxID := c.Param("taxId")
	if taxID == "" {
		h.Error(c, apperror.NewValidation("tax id is required"))
		return
	}

	cl, err := h.service.FindByTaxID(ctx, taxID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromClient(cl))
}

// SetCreditLimit handles POST /clients/:id/credit-limit
func (h *ClientHandler) SetCreditLimit(c *gin.Context) {
	ctx := c.Request.Context()

	clientID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetCreditLimitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetCreditLimit(ctx, clientID, req.Enabled, req.Limit); err != nil {
		h.Error(c, err)
		return
	}

	cl, err := h.service.GetByID(ctx, clientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromClient(cl))
}
