package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"framasa/internal/core/apperror"
	appctx "framasa/internal/core/context"
	"framasa/internal/core/id"
	"framasa/internal/domain/inventory"
	"framasa/internal/infrastructure/http/v1/dto"
)

// MovementHandler serves the stock movement ledger.
type MovementHandler struct {
	*BaseHandler
	ledger *inventory.Ledger
}

// NewMovementHandler creates the movement handler.
func NewMovementHandler(base *BaseHandler, ledger *inventory.Ledger) *MovementHandler {
	return &MovementHandler{BaseHandler: base, ledger: ledger}
}

// Record handles POST /movements
func (h *MovementHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := inventory.ParseDomain(req.Domain)
	if err != nil {
		h.Error(c, err)
		return
	}
	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id"))
		return
	}
	kind, err := inventory.ParseMovementKind(req.Kind)
	if err != nil {
		h.Error(c, err)
		return
	}

	movement, err := h.ledger.RecordMovement(ctx, inventory.MovementRequest{
		Ref:      inventory.ProductRef{Domain: d, ID: productID},
		Kind:     kind,
		Quantity: req.Quantity,
		Reason:   req.Reason,
		Actor:    appctx.GetUsername(ctx),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, movement)
}

// Get handles GET /movements/:id
func (h *MovementHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	movementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	movement, err := h.ledger.GetMovement(ctx, movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, movement)
}

// List handles GET /movements
func (h *MovementHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.MovementListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	filter := inventory.MovementFilter{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Domain != "" {
		d, err := inventory.ParseDomain(req.Domain)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Domain = &d
	}
	if req.ProductID != "" {
		productID, err := id.Parse(req.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId"))
			return
		}
		filter.ProductID = &productID
	}
	if req.Kind != "" {
		kind, err := inventory.ParseMovementKind(req.Kind)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Kind = &kind
	}
	var ok bool
	if filter.From, ok = h.ParseTimeParam(c, "from", req.From); !ok {
		return
	}
	if filter.To, ok = h.ParseTimeParam(c, "to", req.To); !ok {
		return
	}

	movements, total, err := h.ledger.ListMovements(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      movements,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// LowStock handles GET /movements/low-stock across all domains.
func (h *MovementHandler) LowStock(c *gin.Context) {
	ctx := c.Request.Context()

	var domains []inventory.Domain
	if raw := c.Query("domain"); raw != "" {
		d, err := inventory.ParseDomain(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		domains = append(domains, d)
	}

	items, err := h.ledger.LowStock(ctx, domains...)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]*dto.ProductResponse, len(items))
	for i, p := range items {
		out[i] = dto.FromProduct(p)
	}
	h.OK(c, gin.H{"items": out})
}

// RegisterRoutes registers movement ledger routes.
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Record)
	rg.GET("", h.List)
	rg.GET("/low-stock", h.LowStock)
	rg.GET("/:id", h.Get)
}
