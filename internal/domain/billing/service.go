package billing

import (
	"context"
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/audit"
	appctx "framasa/internal/core/context"
	"framasa/internal/core/id"
	"framasa/internal/core/tx"
	"framasa/internal/core/types"
	"framasa/internal/domain/catalogs/client"
	"framasa/internal/domain/inventory"
	"framasa/pkg/logger"
	"framasa/pkg/numerator"
)

// Service orchestrates the invoice lifecycle: issuing with stock
// deduction, payments with client credit, and voiding with stock
// compensation.
type Service struct {
	invoices  InvoiceRepository
	quotes    QuotationRepository
	clients   client.Repository
	ledger    *inventory.Ledger
	numerator *numerator.Service
	policy    *DocumentPolicy
	txManager tx.Manager
	audit     audit.Logger
}

// Config wires the billing service dependencies.
type Config struct {
	Invoices  InvoiceRepository
	Quotes    QuotationRepository
	Clients   client.Repository
	Ledger    *inventory.Ledger
	Numerator *numerator.Service
	Policy    *DocumentPolicy
	TxManager tx.Manager

	// Audit mirrors payment, void and convert operations into the
	// change-history trail; optional
	Audit audit.Logger
}

// NewService creates the billing service. A nil policy falls back to
// the default acceptance rule.
func NewService(cfg Config) *Service {
	policy := cfg.Policy
	if policy == nil {
		policy = MustPolicy(DefaultPolicyExpr)
	}
	return &Service{
		invoices:  cfg.Invoices,
		quotes:    cfg.Quotes,
		clients:   cfg.Clients,
		ledger:    cfg.Ledger,
		numerator: cfg.Numerator,
		policy:    policy,
		txManager: cfg.TxManager,
		audit:     cfg.Audit,
	}
}

// logAudit mirrors a billing operation into the audit trail. Audit
// failures never fail the operation itself.
func (s *Service) logAudit(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogChange(ctx, entityType, entityID, action, changes); err != nil {
		logger.Warn(ctx, "audit write failed",
			"entity_type", entityType,
			"entity_id", entityID.String(),
			"action", string(action),
			"error", err,
		)
	}
}

// InvoiceLineInput is one requested position on a new invoice.
type InvoiceLineInput struct {
	Ref      inventory.ProductRef
	Quantity types.Quantity
	// UnitPrice overrides the product sale price when positive
	UnitPrice types.Money
	Discount  types.Money
}

// InvoiceInput is the request shape for issuing an invoice.
type InvoiceInput struct {
	ClientID id.ID
	Lines    []InvoiceLineInput
	Discount types.Money
	DueDate  *time.Time
	Comment  string
}

// CreateInvoice issues an invoice in one transaction: resolves product
// snapshots, derives the issuing company, numbers the document,
// deducts stock and persists everything. Any failure rolls the whole
// thing back.
func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (*Invoice, error) {
	if len(in.Lines) == 0 {
		return nil, apperror.NewValidation("invoice must have at least one line").
			WithDetail("field", "lines")
	}
	actor := appctx.GetUsername(ctx)

	inv := NewInvoice(in.ClientID)
	inv.Discount = in.Discount
	inv.DueDate = in.DueDate
	inv.Comment = in.Comment
	inv.CreatedBy = actor
	inv.UpdatedBy = actor

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cl, err := s.clients.GetByID(ctx, in.ClientID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("client", in.ClientID.String())
			}
			return err
		}
		if cl.DeletionMark {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "client is marked for deletion").
				WithDetail("client_id", cl.ID.String())
		}
		inv.ClientName = cl.Name

		lines, err := s.resolveLines(ctx, inv.ID, in.Lines)
		if err != nil {
			return err
		}
		inv.Lines = lines

		return s.issue(ctx, inv, actor)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice issued",
		"number", inv.Number,
		"company", string(inv.Company),
		"total", inv.Total.String(),
	)
	return inv, nil
}

// resolveLines turns requested lines into snapshot lines, defaulting
// prices from the product catalog.
func (s *Service) resolveLines(ctx context.Context, invoiceID id.ID, in []InvoiceLineInput) ([]InvoiceLine, error) {
	lines := make([]InvoiceLine, 0, len(in))
	for idx, li := range in {
		product, err := s.ledger.GetProduct(ctx, li.Ref)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewNotFound("product", li.Ref.String()).
					WithDetail("line", idx+1)
			}
			return nil, err
		}
		if !product.Active {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "product is inactive").
				WithDetail("line", idx+1).
				WithDetail("product_id", product.ID.String())
		}

		price := li.UnitPrice
		if !price.IsPositive() {
			price = product.SalePrice
		}

		lines = append(lines, InvoiceLine{
			LineID:        id.New(),
			InvoiceID:     invoiceID,
			LineNo:        idx + 1,
			ProductDomain: product.Domain,
			ProductID:     product.ID,
			ProductCode:   product.Code,
			ProductName:   product.Name,
			Quantity:      li.Quantity,
			UnitPrice:     price,
			Discount:      li.Discount,
		})
	}
	return lines, nil
}

// issue numbers the invoice, checks policy, deducts stock and
// persists. Must run inside a transaction. The invoice must already
// carry resolved snapshot lines.
func (s *Service) issue(ctx context.Context, inv *Invoice, actor string) error {
	company, err := ResolveCompany(inv.Domains())
	if err != nil {
		return err
	}
	inv.Company = company
	inv.Status = StatusPending
	inv.RecalculateTotals()

	if err := inv.Validate(ctx); err != nil {
		return err
	}
	if inv.Total.IsNegative() {
		return apperror.NewValidation("discount exceeds subtotal").
			WithDetail("subtotal", inv.Subtotal.String()).
			WithDetail("discount", inv.Discount.String())
	}
	if err := s.policy.CheckInvoice(inv); err != nil {
		return err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(company.Prefix()), nil, inv.Date)
	if err != nil {
		return fmt.Errorf("number invoice: %w", err)
	}
	inv.Number = number

	for idx := range inv.Lines {
		_, err := s.ledger.RecordMovement(ctx, inventory.MovementRequest{
			Ref:      inv.Lines[idx].Ref(),
			Kind:     inventory.MovementExit,
			Quantity: inv.Lines[idx].Quantity,
			Reason:   "sale " + number,
			Actor:    actor,
		})
		if err != nil {
			return err
		}
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	if err := s.invoices.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
		return fmt.Errorf("save invoice lines: %w", err)
	}
	return nil
}

// GetInvoice loads an invoice with lines and payments.
func (s *Service) GetInvoice(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, err
	}
	return s.loadDetails(ctx, inv)
}

// GetInvoiceByNumber loads an invoice by its document number.
func (s *Service) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	inv, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("invoice", number)
		}
		return nil, err
	}
	return s.loadDetails(ctx, inv)
}

func (s *Service) loadDetails(ctx context.Context, inv *Invoice) (*Invoice, error) {
	lines, err := s.invoices.GetLines(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("load invoice lines: %w", err)
	}
	inv.Lines = lines

	payments, err := s.invoices.GetPayments(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("load invoice payments: %w", err)
	}
	inv.Payments = payments
	return inv, nil
}

// ListInvoices returns invoices matching the filter, without lines.
func (s *Service) ListInvoices(ctx context.Context, f InvoiceFilter) ([]*Invoice, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	return s.invoices.List(ctx, f)
}

// AddPayment registers a single payment. See AddPayments.
func (s *Service) AddPayment(ctx context.Context, invoiceID id.ID, in PaymentInput) (*Invoice, error) {
	return s.AddPayments(ctx, invoiceID, []PaymentInput{in})
}

// AddPayments registers a batch of payments atomically. The combined
// amount must not exceed the outstanding balance; on-account portions
// are checked against the client credit line and increase the client
// balance in the same transaction.
func (s *Service) AddPayments(ctx context.Context, invoiceID id.ID, inputs []PaymentInput) (*Invoice, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewValidation("at least one payment is required")
	}
	actor := appctx.GetUsername(ctx)

	var inv *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("invoice", invoiceID.String())
			}
			return err
		}
		if !inv.AcceptsPayments() {
			return apperror.NewInvalidStateTransition("invoice", string(inv.Status), "receive payments")
		}

		total := types.Zero()
		onAccount := types.Zero()
		for _, in := range inputs {
			if err := in.validate(); err != nil {
				return err
			}
			total = total.Add(in.Amount)
			if in.Kind == PaymentOnAccount {
				onAccount = onAccount.Add(in.Amount)
			}
		}

		outstanding := inv.Outstanding()
		if total.GreaterThan(outstanding) {
			return apperror.NewExcessPayment(total.String(), outstanding.String())
		}

		if onAccount.IsPositive() {
			cl, err := s.clients.GetForUpdate(ctx, inv.ClientID)
			if err != nil {
				return err
			}
			if err := cl.CheckCredit(onAccount); err != nil {
				return err
			}
			if err := s.clients.UpdateBalance(ctx, cl.ID, cl.Balance.Add(onAccount)); err != nil {
				return fmt.Errorf("update client balance: %w", err)
			}
		}

		now := time.Now().UTC()
		for _, in := range inputs {
			p := &Payment{
				ID:        id.New(),
				InvoiceID: inv.ID,
				Kind:      in.Kind,
				Amount:    in.Amount,
				Reference: in.Reference,
				Actor:     actor,
				CreatedAt: now,
			}
			if err := s.invoices.AddPayment(ctx, p); err != nil {
				return fmt.Errorf("add payment: %w", err)
			}
			inv.Payments = append(inv.Payments, *p)
		}

		inv.TotalPaid = inv.TotalPaid.Add(total)
		lines, err := s.invoices.GetLines(ctx, inv.ID)
		if err != nil {
			return err
		}
		inv.Lines = lines
		inv.RecalculateTotals()
		inv.UpdatedBy = actor

		return s.invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	paid := types.Zero()
	for _, in := range inputs {
		paid = paid.Add(in.Amount)
	}
	s.logAudit(ctx, "invoice", inv.ID, audit.ActionPayment, map[string]any{
		"number":     inv.Number,
		"amount":     paid.String(),
		"total_paid": inv.TotalPaid.String(),
		"status":     string(inv.Status),
	})

	logger.Info(ctx, "payments registered",
		"number", inv.Number,
		"status", string(inv.Status),
		"total_paid", inv.TotalPaid.String(),
	)
	return inv, nil
}

// VoidInvoice annuls an unpaid invoice and returns its goods to stock
// with compensating entry movements.
func (s *Service) VoidInvoice(ctx context.Context, invoiceID id.ID, reason string) (*Invoice, error) {
	if reason == "" {
		return nil, apperror.NewValidation("void reason is required").
			WithDetail("field", "reason")
	}
	actor := appctx.GetUsername(ctx)

	var inv *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("invoice", invoiceID.String())
			}
			return err
		}
		if inv.Status == StatusVoid {
			return apperror.NewInvalidStateTransition("invoice", string(inv.Status), "void")
		}
		if inv.TotalPaid.IsPositive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"invoice with registered payments cannot be voided").
				WithDetail("total_paid", inv.TotalPaid.String())
		}

		lines, err := s.invoices.GetLines(ctx, inv.ID)
		if err != nil {
			return err
		}
		inv.Lines = lines

		for idx := range lines {
			_, err := s.ledger.RecordMovement(ctx, inventory.MovementRequest{
				Ref:      lines[idx].Ref(),
				Kind:     inventory.MovementEntry,
				Quantity: lines[idx].Quantity,
				Reason:   "void " + inv.Number,
				Actor:    actor,
			})
			if err != nil {
				return err
			}
		}

		inv.Status = StatusVoid
		inv.VoidReason = reason
		inv.UpdatedBy = actor
		return s.invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "invoice", inv.ID, audit.ActionVoid, map[string]any{
		"number": inv.Number,
		"reason": reason,
	})

	logger.Info(ctx, "invoice voided", "number", inv.Number, "reason", reason)
	return inv, nil
}
