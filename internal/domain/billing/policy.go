package billing

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"framasa/internal/core/apperror"
)

// DefaultPolicyExpr is the rule applied when no custom expression is
// configured: a discount can never exceed the document subtotal.
const DefaultPolicyExpr = `discount <= subtotal`

// DocumentPolicy evaluates a configurable CEL expression against
// invoice and quotation totals before they are issued. Operators can
// tighten rules per deployment without code changes, e.g.
//
//	discount <= subtotal && (company != "MIX" || discount == 0.0)
type DocumentPolicy struct {
	expr    string
	program cel.Program
}

// NewDocumentPolicy compiles the expression. Empty expr falls back to
// DefaultPolicyExpr.
func NewDocumentPolicy(expr string) (*DocumentPolicy, error) {
	if expr == "" {
		expr = DefaultPolicyExpr
	}

	env, err := cel.NewEnv(
		cel.Variable("company", cel.StringType),
		cel.Variable("subtotal", cel.DoubleType),
		cel.Variable("discount", cel.DoubleType),
		cel.Variable("total", cel.DoubleType),
		cel.Variable("lines", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("policy env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile policy %q: %w", expr, iss.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("policy %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("policy program: %w", err)
	}

	return &DocumentPolicy{expr: expr, program: program}, nil
}

// MustPolicy compiles or panics. For wiring defaults at startup.
func MustPolicy(expr string) *DocumentPolicy {
	p, err := NewDocumentPolicy(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Expr returns the source expression.
func (p *DocumentPolicy) Expr() string { return p.expr }

func (p *DocumentPolicy) check(company Company, subtotal, discount, total float64, lines int) error {
	out, _, err := p.program.Eval(map[string]any{
		"company":  string(company),
		"subtotal": subtotal,
		"discount": discount,
		"total":    total,
		"lines":    lines,
	})
	if err != nil {
		return apperror.NewPolicyViolation("policy evaluation failed").WithCause(err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return apperror.NewPolicyViolation("policy did not evaluate to bool")
	}
	if !ok {
		return apperror.NewPolicyViolation("document violates acceptance policy").
			WithDetail("policy", p.expr)
	}
	return nil
}

// CheckInvoice validates invoice totals against the policy.
func (p *DocumentPolicy) CheckInvoice(inv *Invoice) error {
	return p.check(
		inv.Company,
		inv.Subtotal.InexactFloat64(),
		inv.Discount.InexactFloat64(),
		inv.Total.InexactFloat64(),
		len(inv.Lines),
	)
}

// CheckQuotation validates quotation totals against the policy.
func (p *DocumentPolicy) CheckQuotation(q *Quotation) error {
	return p.check(
		q.Company,
		q.Subtotal.InexactFloat64(),
		q.Discount.InexactFloat64(),
		q.Total.InexactFloat64(),
		len(q.Lines),
	)
}
