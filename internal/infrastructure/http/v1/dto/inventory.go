package dto

import (
	"framasa/internal/core/types"
	"framasa/internal/domain/inventory"
)

// --- Product ---

// CreateProductRequest for creating products in any domain. The domain
// itself comes from the route, never from the body.
type CreateProductRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	CategoryID *string `json:"categoryId"`
	UnitID     *string `json:"unitId"`

	BlockType  string `json:"blockType"`
	Dimensions string `json:"dimensions"`

	AggregateType string      `json:"aggregateType"`
	Granulometry  string      `json:"granulometry"`
	Location      string      `json:"location"`
	MoisturePct   types.Money `json:"moisturePct"`
	Quality       string      `json:"quality"`
	Supplier      string      `json:"supplier"`

	SalePrice types.Money    `json:"salePrice"`
	UnitCost  types.Money    `json:"unitCost"`
	MinStock  types.Quantity `json:"minStock"`
}

// ToProduct converts to a domain entity for the given product line.
func (r *CreateProductRequest) ToProduct(d inventory.Domain) *inventory.Product {
	p := inventory.NewProduct(d, r.Code, r.Name)
	p.Description = r.Description
	p.CategoryID = r.CategoryID
	p.UnitID = r.UnitID
	p.BlockType = r.BlockType
	p.Dimensions = r.Dimensions
	p.AggregateType = r.AggregateType
	p.Granulometry = r.Granulometry
	p.Location = r.Location
	p.MoisturePct = r.MoisturePct
	p.Quality = r.Quality
	p.Supplier = r.Supplier
	p.SalePrice = r.SalePrice
	p.UnitCost = r.UnitCost
	p.MinStock = r.MinStock
	return p
}

// UpdateProductRequest for updating products. Stock is absent on
// purpose: only ledger movements change it.
type UpdateProductRequest struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Description *string `json:"description"`

	CategoryID *string `json:"categoryId"`
	UnitID     *string `json:"unitId"`

	BlockType  *string `json:"blockType"`
	Dimensions *string `json:"dimensions"`

	AggregateType *string      `json:"aggregateType"`
	Granulometry  *string      `json:"granulometry"`
	Location      *string      `json:"location"`
	MoisturePct   *types.Money `json:"moisturePct"`
	Quality       *string      `json:"quality"`
	Supplier      *string      `json:"supplier"`

	SalePrice *types.Money    `json:"salePrice"`
	UnitCost  *types.Money    `json:"unitCost"`
	MinStock  *types.Quantity `json:"minStock"`
	Active    *bool           `json:"active"`

	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo merges changed fields onto the existing entity.
func (r *UpdateProductRequest) ApplyTo(p *inventory.Product) *inventory.Product {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.CategoryID != nil {
		p.CategoryID = r.CategoryID
	}
	if r.UnitID != nil {
		p.UnitID = r.UnitID
	}
	if r.BlockType != nil {
		p.BlockType = *r.BlockType
	}
	if r.Dimensions != nil {
		p.Dimensions = *r.Dimensions
	}
	if r.AggregateType != nil {
		p.AggregateType = *r.AggregateType
	}
	if r.Granulometry != nil {
		p.Granulometry = *r.Granulometry
	}
	if r.Location != nil {
		p.Location = *r.Location
	}
	if r.MoisturePct != nil {
		p.MoisturePct = *r.MoisturePct
	}
	if r.Quality != nil {
		p.Quality = *r.Quality
	}
	if r.Supplier != nil {
		p.Supplier = *r.Supplier
	}
	if r.SalePrice != nil {
		p.SalePrice = *r.SalePrice
	}
	if r.UnitCost != nil {
		p.UnitCost = *r.UnitCost
	}
	if r.MinStock != nil {
		p.MinStock = *r.MinStock
	}
	if r.Active != nil {
		p.Active = *r.Active
	}
	p.Version = r.Version
	return p
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	BaseResponse
	Domain      inventory.Domain `json:"domain"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`

	CategoryID *string `json:"categoryId,omitempty"`
	UnitID     *string `json:"unitId,omitempty"`

	BlockType  string `json:"blockType,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`

	AggregateType string      `json:"aggregateType,omitempty"`
	Granulometry  string      `json:"granulometry,omitempty"`
	Location      string      `json:"location,omitempty"`
	MoisturePct   types.Money `json:"moisturePct"`
	Quality       string      `json:"quality,omitempty"`
	Supplier      string      `json:"supplier,omitempty"`

	SalePrice types.Money    `json:"salePrice"`
	UnitCost  types.Money    `json:"unitCost"`
	Stock     types.Quantity `json:"stock"`
	MinStock  types.Quantity `json:"minStock"`
	LowStock  bool           `json:"lowStock"`
	Active    bool           `json:"active"`
}

// FromProduct creates response from domain entity.
func FromProduct(p *inventory.Product) *ProductResponse {
	return &ProductResponse{
		BaseResponse:  FromBaseCatalog(p.BaseCatalog),
		Domain:        p.Domain,
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		UnitID:        p.UnitID,
		BlockType:     p.BlockType,
		Dimensions:    p.Dimensions,
		AggregateType: p.AggregateType,
		Granulometry:  p.Granulometry,
		Location:      p.Location,
		MoisturePct:   p.MoisturePct,
		Quality:       p.Quality,
		Supplier:      p.Supplier,
		SalePrice:     p.SalePrice,
		UnitCost:      p.UnitCost,
		Stock:         p.Stock,
		MinStock:      p.MinStock,
		LowStock:      p.LowStock(),
		Active:        p.Active,
	}
}

// --- Movements ---

// RecordMovementRequest appends one stock movement to the ledger.
type RecordMovementRequest struct {
	Domain    string         `json:"domain" binding:"required"`
	ProductID string         `json:"productId" binding:"required"`
	Kind      string         `json:"kind" binding:"required"`
	Quantity  types.Quantity `json:"quantity"`
	Reason    string         `json:"reason"`
}

// MovementListRequest filters movement history queries.
type MovementListRequest struct {
	Domain    string `form:"domain"`
	ProductID string `form:"productId"`
	Kind      string `form:"kind"`
	From      string `form:"from"`
	To        string `form:"to"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}
