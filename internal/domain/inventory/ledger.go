package inventory

import (
	"context"
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/audit"
	"framasa/internal/core/id"
	"framasa/internal/core/tx"
	"framasa/internal/core/types"
	"framasa/pkg/logger"
)

// Ledger is the single entry point for stock changes across all three
// product domains. Every change goes through RecordMovement, which
// locks the product row, applies the change and appends an immutable
// movement in the same transaction.
type Ledger struct {
	products  map[Domain]ProductRepository
	movements MovementRepository
	txManager tx.Manager
	audit     audit.Logger
}

// NewLedger wires product stores for each domain plus the shared
// movement store. All three domains must be present.
func NewLedger(products map[Domain]ProductRepository, movements MovementRepository, txManager tx.Manager) (*Ledger, error) {
	for _, d := range Domains() {
		if products[d] == nil {
			return nil, fmt.Errorf("ledger: missing product repository for domain %s", d)
		}
	}
	return &Ledger{
		products:  products,
		movements: movements,
		txManager: txManager,
	}, nil
}

// SetAudit attaches an audit trail. Recorded movements are mirrored
// into it; audit failures never fail the stock change itself.
func (l *Ledger) SetAudit(trail audit.Logger) {
	l.audit = trail
}

// Products returns the product store for a domain.
func (l *Ledger) Products(d Domain) (ProductRepository, error) {
	repo, ok := l.products[d]
	if !ok {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown product domain: %q", d))
	}
	return repo, nil
}

// GetProduct resolves a tagged product reference.
func (l *Ledger) GetProduct(ctx context.Context, ref ProductRef) (*Product, error) {
	repo, err := l.Products(ref.Domain)
	if err != nil {
		return nil, err
	}
	p, err := repo.GetByID(ctx, ref.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", ref.String())
		}
		return nil, err
	}
	return p, nil
}

// MovementRequest describes one stock change to record.
type MovementRequest struct {
	Ref      ProductRef
	Kind     MovementKind
	Quantity types.Quantity
	Reason   string
	Actor    string
}

func (r MovementRequest) validate() error {
	if !r.Ref.Domain.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown product domain: %q", r.Ref.Domain))
	}
	if id.IsNil(r.Ref.ID) {
		return apperror.NewValidation("product id is required")
	}
	if _, err := ParseMovementKind(string(r.Kind)); err != nil {
		return err
	}
	if r.Kind == MovementAdjustment {
		if r.Quantity.IsZero() {
			return apperror.NewInvalidQuantity("adjustment quantity cannot be zero")
		}
	} else if !r.Quantity.IsPositive() {
		return apperror.NewInvalidQuantity(fmt.Sprintf("%s quantity must be positive", r.Kind))
	}
	return nil
}

// RecordMovement applies one stock change atomically and returns the
// appended ledger row.
//
// Rules per kind:
//   - ENTRADA, DEVOLUCION: stock increases by quantity.
//   - SALIDA, TRANSFERENCIA: stock decreases; fails with
//     INSUFFICIENT_STOCK when quantity exceeds current stock.
//   - AJUSTE: signed delta; the result is floored at zero, and the
//     movement records both the requested delta and the truthful
//     before/after snapshots.
//
// Piece-counted domains reject fractional quantities.
func (l *Ledger) RecordMovement(ctx context.Context, req MovementRequest) (*Movement, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	repo, err := l.Products(req.Ref.Domain)
	if err != nil {
		return nil, err
	}

	var movement *Movement
	err = l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		product, err := repo.GetForUpdate(ctx, req.Ref.ID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("product", req.Ref.String())
			}
			return err
		}
		if !product.Active {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "product is inactive").
				WithDetail("product_id", product.ID.String())
		}
		if err := product.CheckQuantity(req.Quantity.Abs()); err != nil {
			return err
		}

		before := product.Stock
		after, err := applyMovement(req.Kind, before, req.Quantity, product)
		if err != nil {
			return err
		}

		if err := repo.UpdateStock(ctx, product.ID, after); err != nil {
			return fmt.Errorf("update stock for %s: %w", req.Ref, err)
		}

		movement = &Movement{
			ID:          id.New(),
			Domain:      product.Domain,
			ProductID:   product.ID,
			ProductCode: product.Code,
			ProductName: product.Name,
			Kind:        req.Kind,
			Quantity:    req.Quantity,
			StockBefore: before,
			StockAfter:  after,
			Reason:      req.Reason,
			Actor:       req.Actor,
			CreatedAt:   time.Now().UTC(),
		}
		if err := l.movements.Create(ctx, movement); err != nil {
			return fmt.Errorf("append movement for %s: %w", req.Ref, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logMovement(ctx, movement)
	return movement, nil
}

func (l *Ledger) logMovement(ctx context.Context, m *Movement) {
	if l.audit == nil {
		return
	}
	err := l.audit.LogChange(ctx, "movement", m.ID, audit.ActionMovement, map[string]any{
		"domain":       string(m.Domain),
		"product_id":   m.ProductID.String(),
		"product_code": m.ProductCode,
		"kind":         string(m.Kind),
		"quantity":     m.Quantity.String(),
		"stock_before": m.StockBefore.String(),
		"stock_after":  m.StockAfter.String(),
		"reason":       m.Reason,
		"actor":        m.Actor,
	})
	if err != nil {
		logger.Warn(ctx, "audit movement failed", "movement_id", m.ID.String(), "error", err)
	}
}

func applyMovement(kind MovementKind, before, qty types.Quantity, product *Product) (types.Quantity, error) {
	switch {
	case kind.Inbound():
		return before.Add(qty), nil
	case kind.Outbound():
		if qty > before {
			return 0, apperror.NewInsufficientStock(product.ID.String(), qty.String(), before.String())
		}
		return before.Sub(qty), nil
	default: // AJUSTE
		after := before.Add(qty)
		if after.IsNegative() {
			after = 0
		}
		return after, nil
	}
}

// RecordMovements applies several changes in one transaction. Either
// all of them land or none do. Used for multi-line documents such as
// invoices.
func (l *Ledger) RecordMovements(ctx context.Context, reqs []MovementRequest) ([]*Movement, error) {
	if len(reqs) == 0 {
		return nil, apperror.NewValidation("at least one movement is required")
	}
	movements := make([]*Movement, 0, len(reqs))
	err := l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, req := range reqs {
			m, err := l.RecordMovement(ctx, req)
			if err != nil {
				return err
			}
			movements = append(movements, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// GetMovement retrieves one ledger row.
func (l *Ledger) GetMovement(ctx context.Context, movementID id.ID) (*Movement, error) {
	m, err := l.movements.GetByID(ctx, movementID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("movement", movementID.String())
		}
		return nil, err
	}
	return m, nil
}

// ListMovements returns movement history, newest first.
func (l *Ledger) ListMovements(ctx context.Context, f MovementFilter) ([]*Movement, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	return l.movements.List(ctx, f)
}

// LowStock returns active products at or below minimum across the
// requested domains (all domains when none given).
func (l *Ledger) LowStock(ctx context.Context, domains ...Domain) ([]*Product, error) {
	if len(domains) == 0 {
		domains = Domains()
	}
	var out []*Product
	for _, d := range domains {
		repo, err := l.Products(d)
		if err != nil {
			return nil, err
		}
		items, err := repo.ListLowStock(ctx)
		if err != nil {
			return nil, fmt.Errorf("low stock for %s: %w", d, err)
		}
		out = append(out, items...)
	}
	return out, nil
}
