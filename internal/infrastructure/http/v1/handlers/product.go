package handlers

import (
	"github.com/gin-gonic/gin"

	"framasa/internal/domain/inventory"
	"framasa/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves one product domain's catalog. Three instances
// are mounted, one per business line.
type ProductHandler struct {
	*CatalogHandler[*inventory.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	domain inventory.Domain
	ledger *inventory.Ledger
}

// NewProductHandler builds the handler for a single product domain.
func NewProductHandler(base *BaseHandler, service *inventory.ProductService, ledger *inventory.Ledger) *ProductHandler {
	d := service.Domain()
	inner := NewCatalogHandler(base, CatalogHandlerConfig[*inventory.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service:    service.CatalogService,
		EntityName: "product",
		MapCreateDTO: func(req dto.CreateProductRequest) *inventory.Product {
			return req.ToProduct(d)
		},
		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *inventory.Product) *inventory.Product {
			return req.ApplyTo(existing)
		},
		MapToDTO: func(p *inventory.Product) any {
			return dto.FromProduct(p)
		},
	})
	return &ProductHandler{CatalogHandler: inner, domain: d, ledger: ledger}
}

// LowStock handles GET /{domain}/products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.ledger.LowStock(ctx, h.domain)
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
