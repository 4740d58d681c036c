// Package employee provides the employee catalog used by payroll.
package employee

import (
	"context"

	"framasa/internal/core/apperror"
	"framasa/internal/core/entity"
	"framasa/internal/core/tx"
	"framasa/internal/core/types"
	"framasa/internal/domain"
)

// Employee is a worker eligible for payroll sheets.
type Employee struct {
	entity.Catalog

	Position string  `db:"position" json:"position"`
	Phone    *string `db:"phone" json:"phone,omitempty"`

	// DailyWage is the base pay per worked day
	DailyWage types.Money `db:"daily_wage" json:"dailyWage"`

	// Active employees appear in new payroll sheets
	Active bool `db:"active" json:"active"`

	HiredAt *string `db:"hired_at" json:"hiredAt,omitempty"`
}

// NewEmployee creates an active Employee.
func NewEmployee(code, name, position string, dailyWage types.Money) *Employee {
	return &Employee{
		Catalog:   entity.NewCatalog(code, name),
		Position:  position,
		DailyWage: dailyWage,
		Active:    true,
	}
}

func (e *Employee) Validate(ctx context.Context) error {
	if err := e.Catalog.Validate(ctx); err != nil {
		return err
	}
	if e.DailyWage.IsNegative() {
		return apperror.NewValidation("daily wage cannot be negative").
			WithDetail("field", "dailyWage")
	}
	return nil
}

// Repository is the persistence contract for employees.
type Repository interface {
	domain.CatalogRepository[*Employee]
}

// NewService creates the employee service.
func NewService(repo Repository, txManager tx.Manager) *domain.CatalogService[*Employee] {
	return domain.NewCatalogService(domain.CatalogServiceConfig[*Employee]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "employee",
	})
}
