package client

import (
	"context"
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/core/tx"
	"framasa/internal/core/types"
	"framasa/internal/domain"
	"framasa/pkg/numerator"
)

// Service provides business logic for the Client catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Client]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Client service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Client]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "client",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, c *Client) error {
	if c.Code == "" {
		cfg := numerator.DefaultConfig("CLI")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate client code: %w", err)
		}
		c.Code = code
	}

	if err := s.checkTaxID(ctx, c); err != nil {
		return err
	}
	return nil
}

func (s *Service) prepareForUpdate(ctx context.Context, c *Client) error {
	// Balance is owned by the billing service, not the catalog API.
	current, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Balance = current.Balance

	return s.checkTaxID(ctx, c)
}

func (s *Service) checkTaxID(ctx context.Context, c *Client) error {
	if c.TaxID == nil || *c.TaxID == "" {
		return nil
	}
	existing, err := s.repo.FindByTaxID(ctx, *c.TaxID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewDuplicate("client", "taxId", *c.TaxID)
	}
	return nil
}

// FindByTaxID retrieves a client by fiscal identifier.
func (s *Service) FindByTaxID(ctx context.Context, taxID string) (*Client, error) {
	c, err := s.repo.FindByTaxID(ctx, taxID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("client", taxID)
		}
		return nil, err
	}
	return c, nil
}

// SetCreditLimit changes credit terms for a client.
func (s *Service) SetCreditLimit(ctx context.Context, clientID id.ID, enabled bool, limit types.Money) error {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	c.CreditEnabled = enabled
	c.CreditLimit = limit
	return s.Update(ctx, c)
}
