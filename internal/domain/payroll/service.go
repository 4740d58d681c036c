package payroll

import (
	"context"
	"fmt"
	"time"

	"framasa/internal/core/apperror"
	appctx "framasa/internal/core/context"
	"framasa/internal/core/id"
	"framasa/internal/core/tx"
	"framasa/internal/core/types"
	"framasa/internal/domain/catalogs/employee"
	"framasa/pkg/logger"
	"framasa/pkg/numerator"
)

const numberPrefix = "PLA"

// Service manages payroll sheets.
type Service struct {
	sheets    Repository
	employees employee.Repository
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates the payroll service.
func NewService(sheets Repository, employees employee.Repository, num *numerator.Service, txManager tx.Manager) *Service {
	return &Service{
		sheets:    sheets,
		employees: employees,
		numerator: num,
		txManager: txManager,
	}
}

// LineInput is one employee entry on a new or edited sheet.
type LineInput struct {
	EmployeeID id.ID
	DaysWorked types.Quantity
	// DailyWage overrides the catalog wage when positive
	DailyWage  types.Money
	Bonuses    types.Money
	Deductions types.Money
}

// SheetInput is the request shape for creating a payroll sheet.
type SheetInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Lines       []LineInput
	Comment     string
}

// Create builds a numbered draft sheet with employee snapshots. Wages
// default from the employee catalog.
func (s *Service) Create(ctx context.Context, in SheetInput) (*Sheet, error) {
	if len(in.Lines) == 0 {
		return nil, apperror.NewValidation("payroll sheet must have at least one line").
			WithDetail("field", "lines")
	}
	actor := appctx.GetUsername(ctx)

	sheet := NewSheet(in.PeriodStart, in.PeriodEnd)
	sheet.Comment = in.Comment
	sheet.CreatedBy = actor
	sheet.UpdatedBy = actor

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lines, err := s.resolveLines(ctx, sheet.ID, in.Lines)
		if err != nil {
			return err
		}
		sheet.Lines = lines
		sheet.RecalculateTotals()

		if err := sheet.Validate(ctx); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx, numerator.YearlyConfig(numberPrefix), nil, sheet.Date)
		if err != nil {
			return fmt.Errorf("number payroll sheet: %w", err)
		}
		sheet.Number = number

		if err := s.sheets.Create(ctx, sheet); err != nil {
			return fmt.Errorf("create payroll sheet: %w", err)
		}
		if err := s.sheets.SaveLines(ctx, sheet.ID, sheet.Lines); err != nil {
			return fmt.Errorf("save payroll lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payroll sheet created",
		"number", sheet.Number,
		"employees", len(sheet.Lines),
		"total_net", sheet.TotalNet.String(),
	)
	return sheet, nil
}

func (s *Service) resolveLines(ctx context.Context, sheetID id.ID, in []LineInput) ([]Line, error) {
	lines := make([]Line, 0, len(in))
	for idx, li := range in {
		emp, err := s.employees.GetByID(ctx, li.EmployeeID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewNotFound("employee", li.EmployeeID.String()).
					WithDetail("line", idx+1)
			}
			return nil, err
		}
		if !emp.Active {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "employee is inactive").
				WithDetail("line", idx+1).
				WithDetail("employee_id", emp.ID.String())
		}

		wage := li.DailyWage
		if !wage.IsPositive() {
			wage = emp.DailyWage
		}

		lines = append(lines, Line{
			LineID:       id.New(),
			SheetID:      sheetID,
			LineNo:       idx + 1,
			EmployeeID:   emp.ID,
			EmployeeCode: emp.Code,
			EmployeeName: emp.Name,
			Position:     emp.Position,
			DaysWorked:   li.DaysWorked,
			DailyWage:    wage,
			Bonuses:      li.Bonuses,
			Deductions:   li.Deductions,
		})
	}
	return lines, nil
}

// Get loads a sheet with its lines.
func (s *Service) Get(ctx context.Context, sheetID id.ID) (*Sheet, error) {
	sheet, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("payroll sheet", sheetID.String())
		}
		return nil, err
	}
	lines, err := s.sheets.GetLines(ctx, sheet.ID)
	if err != nil {
		return nil, fmt.Errorf("load payroll lines: %w", err)
	}
	sheet.Lines = lines
	return sheet, nil
}

// List returns sheets matching the filter, without lines.
func (s *Service) List(ctx context.Context, f Filter) ([]*Sheet, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	return s.sheets.List(ctx, f)
}

// UpdateLines replaces the lines of a draft sheet.
func (s *Service) UpdateLines(ctx context.Context, sheetID id.ID, in []LineInput) (*Sheet, error) {
	actor := appctx.GetUsername(ctx)

	var sheet *Sheet
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sheet, err = s.sheets.GetForUpdate(ctx, sheetID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("payroll sheet", sheetID.String())
			}
			return err
		}
		if !sheet.Editable() {
			return apperror.NewInvalidStateTransition("payroll sheet", string(sheet.Status), "edit")
		}

		lines, err := s.resolveLines(ctx, sheet.ID, in)
		if err != nil {
			return err
		}
		sheet.Lines = lines
		sheet.RecalculateTotals()
		if err := sheet.Validate(ctx); err != nil {
			return err
		}
		sheet.UpdatedBy = actor

		if err := s.sheets.SaveLines(ctx, sheet.ID, sheet.Lines); err != nil {
			return err
		}
		return s.sheets.Update(ctx, sheet)
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// Close finalizes a draft sheet.
func (s *Service) Close(ctx context.Context, sheetID id.ID) (*Sheet, error) {
	actor := appctx.GetUsername(ctx)

	var sheet *Sheet
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sheet, err = s.sheets.GetForUpdate(ctx, sheetID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("payroll sheet", sheetID.String())
			}
			return err
		}
		if err := sheet.MarkClosed(time.Now().UTC()); err != nil {
			return err
		}
		sheet.UpdatedBy = actor
		return s.sheets.Update(ctx, sheet)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payroll sheet closed", "number", sheet.Number)
	return sheet, nil
}
