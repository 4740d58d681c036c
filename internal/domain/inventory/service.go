package inventory

import (
	"context"
	"strings"

	"framasa/internal/core/apperror"
	"framasa/internal/core/tx"
	"framasa/internal/domain"
)

// ProductService provides catalog operations for one product domain on
// top of the generic catalog service. Stock is read-only here; the
// ledger owns all stock writes.
type ProductService struct {
	*domain.CatalogService[*Product]

	domain Domain
	repo   ProductRepository
}

// NewProductService builds the service for a single domain.
func NewProductService(d Domain, repo ProductRepository, txManager tx.Manager) *ProductService {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: strings.ToLower(string(d)) + " product",
	})

	s := &ProductService{
		CatalogService: base,
		domain:         d,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(s.beforeCreate)
	base.Hooks().OnBeforeUpdate(s.beforeUpdate)

	return s
}

// Domain returns the product line this service manages.
func (s *ProductService) Domain() Domain { return s.domain }

func (s *ProductService) beforeCreate(ctx context.Context, p *Product) error {
	if p.Domain == "" {
		p.Domain = s.domain
	}
	if p.Domain != s.domain {
		return apperror.NewValidation("product domain does not match this catalog").
			WithDetail("expected", string(s.domain)).
			WithDetail("got", string(p.Domain))
	}
	exists, err := s.repo.ExistsByCode(ctx, p.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("product", "code", p.Code)
	}
	return nil
}

// beforeUpdate pins the fields the API must not change: the domain tag
// and the stock level, which only ledger movements may touch.
func (s *ProductService) beforeUpdate(ctx context.Context, p *Product) error {
	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.Domain != "" && p.Domain != current.Domain {
		return apperror.NewValidation("product domain is immutable")
	}
	p.Domain = current.Domain
	p.Stock = current.Stock
	if p.Code != current.Code {
		exists, err := s.repo.ExistsByCode(ctx, p.Code)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewDuplicate("product", "code", p.Code)
		}
	}
	return nil
}
