// Package payroll provides weekly payroll sheets for employees.
package payroll

import (
	"context"
	"time"

	"framasa/internal/core/apperror"
	"framasa/internal/core/entity"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
)

// SheetStatus is the lifecycle state of a payroll sheet.
type SheetStatus string

const (
	// SheetDraft can still be edited
	SheetDraft SheetStatus = "DRAFT"
	// SheetClosed is final; amounts were paid out
	SheetClosed SheetStatus = "CLOSED"
)

// Sheet is one payroll run over a period. Numbers use the PLA prefix
// and reset yearly (PLA-2026-00001).
type Sheet struct {
	entity.Document

	PeriodStart time.Time `db:"period_start" json:"periodStart"`
	PeriodEnd   time.Time `db:"period_end" json:"periodEnd"`

	Status SheetStatus `db:"status" json:"status"`

	TotalGross      types.Money `db:"total_gross" json:"totalGross"`
	TotalDeductions types.Money `db:"total_deductions" json:"totalDeductions"`
	TotalNet        types.Money `db:"total_net" json:"totalNet"`

	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`

	Lines []Line `db:"-" json:"lines,omitempty"`
}

// Line is one employee's pay on a sheet. Employee fields are
// snapshots taken when the sheet is created.
type Line struct {
	LineID  id.ID `db:"line_id" json:"lineId"`
	SheetID id.ID `db:"sheet_id" json:"-"`
	LineNo  int   `db:"line_no" json:"lineNo"`

	EmployeeID   id.ID  `db:"employee_id" json:"employeeId"`
	EmployeeCode string `db:"employee_code" json:"employeeCode"`
	EmployeeName string `db:"employee_name" json:"employeeName"`
	Position     string `db:"position" json:"position"`

	// DaysWorked allows half days (e.g. 5.5)
	DaysWorked types.Quantity `db:"days_worked" json:"daysWorked"`
	DailyWage  types.Money    `db:"daily_wage" json:"dailyWage"`

	Bonuses    types.Money `db:"bonuses" json:"bonuses"`
	Deductions types.Money `db:"deductions" json:"deductions"`

	Gross types.Money `db:"gross" json:"gross"`
	Net   types.Money `db:"net" json:"net"`
}

// Recalculate derives gross and net pay for the line.
func (l *Line) Recalculate() {
	l.Gross = l.DaysWorked.ToMoney().Mul(l.DailyWage).Add(l.Bonuses)
	l.Net = l.Gross.Sub(l.Deductions)
}

// NewSheet creates a draft payroll sheet for a period.
func NewSheet(periodStart, periodEnd time.Time) *Sheet {
	return &Sheet{
		Document:        entity.NewDocument(),
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		Status:          SheetDraft,
		TotalGross:      types.Zero(),
		TotalDeductions: types.Zero(),
		TotalNet:        types.Zero(),
	}
}

// RecalculateTotals recomputes line pay and sheet totals.
func (s *Sheet) RecalculateTotals() {
	gross := types.Zero()
	deductions := types.Zero()
	net := types.Zero()
	for idx := range s.Lines {
		s.Lines[idx].Recalculate()
		gross = gross.Add(s.Lines[idx].Gross)
		deductions = deductions.Add(s.Lines[idx].Deductions)
		net = net.Add(s.Lines[idx].Net)
	}
	s.TotalGross = gross
	s.TotalDeductions = deductions
	s.TotalNet = net
}

// Editable reports whether lines can still change.
func (s *Sheet) Editable() bool {
	return s.Status == SheetDraft
}

// MarkClosed finalizes the sheet.
func (s *Sheet) MarkClosed(now time.Time) error {
	if s.Status != SheetDraft {
		return apperror.NewInvalidStateTransition("payroll sheet", string(s.Status), "close")
	}
	s.Status = SheetClosed
	s.ClosedAt = &now
	return nil
}

// Validate implements entity.Validatable.
func (s *Sheet) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}
	if s.PeriodStart.IsZero() || s.PeriodEnd.IsZero() {
		return apperror.NewValidation("payroll period is required").
			WithDetail("field", "period")
	}
	if s.PeriodEnd.Before(s.PeriodStart) {
		return apperror.NewValidation("period end must not precede period start").
			WithDetail("field", "periodEnd")
	}
	if len(s.Lines) == 0 {
		return apperror.NewValidation("payroll sheet must have at least one line").
			WithDetail("field", "lines")
	}
	seen := make(map[id.ID]struct{}, len(s.Lines))
	for idx := range s.Lines {
		l := &s.Lines[idx]
		if id.IsNil(l.EmployeeID) {
			return apperror.NewValidation("employee is required").WithDetail("line", idx+1)
		}
		if _, dup := seen[l.EmployeeID]; dup {
			return apperror.NewValidation("employee appears twice on the sheet").
				WithDetail("line", idx+1).
				WithDetail("employee_id", l.EmployeeID.String())
		}
		seen[l.EmployeeID] = struct{}{}
		if l.DaysWorked.IsNegative() {
			return apperror.NewValidation("days worked cannot be negative").WithDetail("line", idx+1)
		}
		if l.DailyWage.IsNegative() {
			return apperror.NewValidation("daily wage cannot be negative").WithDetail("line", idx+1)
		}
		if l.Bonuses.IsNegative() || l.Deductions.IsNegative() {
			return apperror.NewValidation("bonuses and deductions cannot be negative").
				WithDetail("line", idx+1)
		}
		if l.Net.IsNegative() {
			return apperror.NewValidation("deductions exceed gross pay").
				WithDetail("line", idx+1)
		}
	}
	return nil
}
