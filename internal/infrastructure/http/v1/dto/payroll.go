package dto

import (
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain/payroll"
)

// PayrollLineRequest is one employee entry on a sheet.
type PayrollLineRequest struct {
	EmployeeID string         `json:"employeeId" binding:"required"`
	DaysWorked types.Quantity `json:"daysWorked"`
	// DailyWage overrides the catalog wage when positive
	DailyWage  types.Money `json:"dailyWage"`
	Bonuses    types.Money `json:"bonuses"`
	Deductions types.Money `json:"deductions"`
}

func toPayrollLineInputs(lines []PayrollLineRequest) ([]payroll.LineInput, error) {
	out := make([]payroll.LineInput, 0, len(lines))
	for i, l := range lines {
		employeeID, err := id.Parse(l.EmployeeID)
		if err != nil {
			return nil, apperror.NewValidation("invalid employee id").
				WithDetail("line", i+1)
		}
		out = append(out, payroll.LineInput{
			EmployeeID: employeeID,
			DaysWorked: l.DaysWorked,
			DailyWage:  l.DailyWage,
			Bonuses:    l.Bonuses,
			Deductions: l.Deductions,
		})
	}
	return out, nil
}

// CreatePayrollSheetRequest creates a new payroll sheet.
type CreatePayrollSheetRequest struct {
	PeriodStart time.Time            `json:"periodStart" binding:"required"`
	PeriodEnd   time.Time            `json:"periodEnd" binding:"required"`
	Lines       []PayrollLineRequest `json:"lines" binding:"required,min=1"`
	Comment     string               `json:"comment"`
}

// ToInput converts to the domain request shape.
func (r *CreatePayrollSheetRequest) ToInput() (payroll.SheetInput, error) {
	lines, err := toPayrollLineInputs(r.Lines)
	if err != nil {
		return payroll.SheetInput{}, err
	}
	return payroll.SheetInput{
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		Lines:       lines,
		Comment:     r.Comment,
	}, nil
}

// UpdatePayrollLinesRequest replaces the lines of a draft sheet.
type UpdatePayrollLinesRequest struct {
	Lines []PayrollLineRequest `json:"lines" binding:"required,min=1"`
}

// ToInputs converts to domain line inputs.
func (r *UpdatePayrollLinesRequest) ToInputs() ([]payroll.LineInput, error) {
	return toPayrollLineInputs(r.Lines)
}

// PayrollListRequest filters payroll sheet list queries.
type PayrollListRequest struct {
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
