package billing

import (
	"context"
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/audit"
	appctx "framasa/internal/core/context"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain/inventory"
	"framasa/pkg/logger"
	"framasa/pkg/numerator"
)

// quotationPrefix is the numbering prefix shared by all quotations,
// regardless of company. Unlike invoices, quotes are not fiscal
// documents, so one sequence is enough.
const quotationPrefix = "COT"

// QuotationInput is the request shape for creating a quotation.
type QuotationInput struct {
	ClientID   id.ID
	Lines      []InvoiceLineInput
	Discount   types.Money
	ValidUntil *time.Time
	Terms      string
	Comment    string
}

// CreateQuotation creates a numbered draft quotation with product
// snapshots. No stock is touched.
func (s *Service) CreateQuotation(ctx context.Context, in QuotationInput) (*Quotation, error) {
	if len(in.Lines) == 0 {
		return nil, apperror.NewValidation("quotation must have at least one line").
			WithDetail("field", "lines")
	}
	actor := appctx.GetUsername(ctx)

	q := NewQuotation(in.ClientID)
	q.Discount = in.Discount
	q.ValidUntil = in.ValidUntil
	q.Terms = in.Terms
	q.Comment = in.Comment
	q.CreatedBy = actor
	q.UpdatedBy = actor

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cl, err := s.clients.GetByID(ctx, in.ClientID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("client", in.ClientID.String())
			}
			return err
		}
		q.ClientName = cl.Name

		invLines, err := s.resolveLines(ctx, q.ID, in.Lines)
		if err != nil {
			return err
		}
		q.Lines = make([]QuotationLine, len(invLines))
		for i, l := range invLines {
			q.Lines[i] = QuotationLine{
				LineID:        l.LineID,
				QuotationID:   q.ID,
				LineNo:        l.LineNo,
				ProductDomain: l.ProductDomain,
				ProductID:     l.ProductID,
				ProductCode:   l.ProductCode,
				ProductName:   l.ProductName,
				Quantity:      l.Quantity,
				UnitPrice:     l.UnitPrice,
				Discount:      l.Discount,
			}
		}

		company, err := ResolveCompany(q.Domains())
		if err != nil {
			return err
		}
		q.Company = company
		q.RecalculateTotals()

		if err := q.Validate(ctx); err != nil {
			return err
		}
		if q.Total.IsNegative() {
			return apperror.NewValidation("discount exceeds subtotal").
				WithDetail("subtotal", q.Subtotal.String()).
				WithDetail("discount", q.Discount.String())
		}
		if err := s.policy.CheckQuotation(q); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(quotationPrefix), nil, q.Date)
		if err != nil {
			return fmt.Errorf("number quotation: %w", err)
		}
		q.Number = number

		if err := s.quotes.Create(ctx, q); err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		if err := s.quotes.SaveLines(ctx, q.ID, q.Lines); err != nil {
			return fmt.Errorf("save quotation lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation created", "number", q.Number, "total", q.Total.String())
	return q, nil
}

// GetQuotation loads a quotation with lines.
func (s *Service) GetQuotation(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	q, err := s.quotes.GetByID(ctx, quotationID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("quotation", quotationID.String())
		}
		return nil, err
	}
	lines, err := s.quotes.GetLines(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("load quotation lines: %w", err)
	}
	q.Lines = lines
	return q, nil
}

// ListQuotations returns quotations matching the filter, without lines.
func (s *Service) ListQuotations(ctx context.Context, f QuotationFilter) ([]*Quotation, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	return s.quotes.List(ctx, f)
}

// transition applies a quotation state change. When the quote turned
// out to be expired, the EXPIRED status is persisted and the
// transition error still reported to the caller.
func (s *Service) transition(ctx context.Context, quotationID id.ID, apply func(q *Quotation, now time.Time) error) (*Quotation, error) {
	actor := appctx.GetUsername(ctx)
	now := time.Now().UTC()

	var q *Quotation
	var transitionErr error
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		q, err = s.quotes.GetForUpdate(ctx, quotationID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("quotation", quotationID.String())
			}
			return err
		}

		before := q.Status
		transitionErr = apply(q, now)
		if q.Status == before {
			return transitionErr
		}
		q.UpdatedBy = actor
		return s.quotes.Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	if transitionErr != nil {
		return q, transitionErr
	}
	return q, nil
}

// SendQuotation moves a draft quote to SENT.
func (s *Service) SendQuotation(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.transition(ctx, quotationID, func(q *Quotation, now time.Time) error {
		return q.MarkSent(now)
	})
}

// AcceptQuotation moves a quote to ACCEPTED. Overdue quotes are
// expired instead.
func (s *Service) AcceptQuotation(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.transition(ctx, quotationID, func(q *Quotation, now time.Time) error {
		return q.MarkAccepted(now)
	})
}

// RejectQuotation moves a quote to REJECTED unless it was already
// rejected or converted.
func (s *Service) RejectQuotation(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.transition(ctx, quotationID, func(q *Quotation, now time.Time) error {
		return q.MarkRejected(now)
	})
}

// ConvertQuotation turns an accepted quotation into an issued invoice.
// Line snapshots are copied verbatim from the quote; stock is checked
// and deducted the same way as for a direct invoice. An insufficient
// stock on any line aborts the whole conversion.
func (s *Service) ConvertQuotation(ctx context.Context, quotationID id.ID) (*Invoice, error) {
	actor := appctx.GetUsername(ctx)
	now := time.Now().UTC()

	var inv *Invoice
	var expiredErr error
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.quotes.GetForUpdate(ctx, quotationID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("quotation", quotationID.String())
			}
			return err
		}
		if q.IsExpired(now) {
			q.Status = QuoteExpired
			q.UpdatedBy = actor
			expiredErr = apperror.NewInvalidStateTransition("quotation", string(QuoteExpired), "convert")
			return s.quotes.Update(ctx, q)
		}
		if err := q.CanConvert(); err != nil {
			return err
		}

		lines, err := s.quotes.GetLines(ctx, q.ID)
		if err != nil {
			return err
		}

		inv = NewInvoice(q.ClientID)
		inv.ClientName = q.ClientName
		inv.Discount = q.Discount
		inv.Comment = q.Comment
		inv.QuotationID = &q.ID
		inv.CreatedBy = actor
		inv.UpdatedBy = actor
		inv.Lines = make([]InvoiceLine, len(lines))
		for i, l := range lines {
			inv.Lines[i] = InvoiceLine{
				LineID:        id.New(),
				InvoiceID:     inv.ID,
				LineNo:        l.LineNo,
				ProductDomain: l.ProductDomain,
				ProductID:     l.ProductID,
				ProductCode:   l.ProductCode,
				ProductName:   l.ProductName,
				Quantity:      l.Quantity,
				UnitPrice:     l.UnitPrice,
				Discount:      l.Discount,
			}
		}

		if err := s.issue(ctx, inv, actor); err != nil {
			return err
		}

		q.InvoiceID = &inv.ID
		q.UpdatedBy = actor
		return s.quotes.Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	if expiredErr != nil {
		return nil, expiredErr
	}

	s.logAudit(ctx, "quotation", quotationID, audit.ActionConvert, map[string]any{
		"invoice_id":     inv.ID.String(),
		"invoice_number": inv.Number,
		"total":          inv.Total.String(),
	})

	logger.Info(ctx, "quotation converted",
		"quotation_id", quotationID.String(),
		"invoice", inv.Number,
	)
	return inv, nil
}

// ResolveProduct translates a domain-tagged id into its product.
func (s *Service) ResolveProduct(ctx context.Context, d inventory.Domain, productID id.ID) (*inventory.Product, error) {
	return s.ledger.GetProduct(ctx, inventory.ProductRef{Domain: d, ID: productID})
}
