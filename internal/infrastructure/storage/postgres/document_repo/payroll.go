package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"framasa/internal/core/id"
	"framasa/internal/domain/payroll"
	"framasa/internal/infrastructure/storage/postgres"
)

const (
	payrollSheetsTable = "doc_payroll_sheets"
	payrollLinesTable  = "doc_payroll_lines"
)

// PayrollRepo implements payroll.Repository.
type PayrollRepo struct {
	*BaseDocumentRepo[*payroll.Sheet]
}

// NewPayrollRepo creates a new payroll sheet repository.
func NewPayrollRepo(txm *postgres.TxManager) *PayrollRepo {
	return &PayrollRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*payroll.Sheet](
			txm,
			payrollSheetsTable,
			postgres.ExtractDBColumns[payroll.Sheet](),
			func() *payroll.Sheet { return &payroll.Sheet{} },
		),
	}
}

// List retrieves payroll sheets matching the filter, newest first.
func (r *PayrollRepo) List(ctx context.Context, f payroll.Filter) ([]*payroll.Sheet, int64, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"deletion_mark": false})

	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"period_start": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"period_end": *f.To})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("period_start DESC", "number DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var sheets []*payroll.Sheet
	if err := pgxscan.Select(ctx, querier, &sheets, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("select: %w", err)
	}

	return sheets, total, nil
}

func (r *PayrollRepo) GetLines(ctx context.Context, sheetID id.ID) ([]payroll.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "sheet_id", "line_no",
			"employee_id", "employee_code", "employee_name", "position",
			"days_worked", "daily_wage", "bonuses", "deductions",
			"gross", "net",
		).
		From(payrollLinesTable).
		Where(squirrel.Eq{"sheet_id": sheetID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []payroll.Line
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *PayrollRepo) SaveLines(ctx context.Context, sheetID id.ID, lines []payroll.Line) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + payrollLinesTable + " WHERE sheet_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, sheetID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(payrollLinesTable).
		Columns(
			"line_id", "sheet_id", "line_no",
			"employee_id", "employee_code", "employee_name", "position",
			"days_worked", "daily_wage", "bonuses", "deductions",
			"gross", "net",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, sheetID, line.LineNo,
			line.EmployeeID, line.EmployeeCode, line.EmployeeName, line.Position,
			line.DaysWorked, line.DailyWage, line.Bonuses, line.Deductions,
			line.Gross, line.Net,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ payroll.Repository = (*PayrollRepo)(nil)
