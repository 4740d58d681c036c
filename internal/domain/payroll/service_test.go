package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framasa/internal/core/apperror"
	appctx "framasa/internal/core/context"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain"
	"framasa/internal/domain/catalogs/employee"
	"framasa/pkg/numerator"
)

// --- Fakes ---

type memSheetRepo struct {
	sheets map[id.ID]*Sheet
	lines  map[id.ID][]Line
}

func newMemSheetRepo() *memSheetRepo {
	return &memSheetRepo{sheets: map[id.ID]*Sheet{}, lines: map[id.ID][]Line{}}
}

func (r *memSheetRepo) Create(_ context.Context, s *Sheet) error {
	cp := *s
	cp.Lines = nil
	r.sheets[s.ID] = &cp
	return nil
}

func (r *memSheetRepo) Update(_ context.Context, s *Sheet) error {
	if _, ok := r.sheets[s.ID]; !ok {
		return apperror.NewNotFound("payroll sheet", s.ID.String())
	}
	cp := *s
	cp.Lines = nil
	r.sheets[s.ID] = &cp
	return nil
}

func (r *memSheetRepo) GetByID(_ context.Context, sheetID id.ID) (*Sheet, error) {
	s, ok := r.sheets[sheetID]
	if !ok {
		return nil, apperror.NewNotFound("payroll sheet", sheetID.String())
	}
	cp := *s
	return &cp, nil
}

func (r *memSheetRepo) GetByNumber(_ context.Context, number string) (*Sheet, error) {
	for _, s := range r.sheets {
		if s.Number == number {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("payroll sheet", number)
}

func (r *memSheetRepo) GetForUpdate(ctx context.Context, sheetID id.ID) (*Sheet, error) {
	return r.GetByID(ctx, sheetID)
}

func (r *memSheetRepo) List(_ context.Context, f Filter) ([]*Sheet, int64, error) {
	var out []*Sheet
	for _, s := range r.sheets {
		if f.Status != nil && s.Status != *f.Status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *memSheetRepo) GetLines(_ context.Context, sheetID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[sheetID]...), nil
}

func (r *memSheetRepo) SaveLines(_ context.Context, sheetID id.ID, lines []Line) error {
	r.lines[sheetID] = append([]Line(nil), lines...)
	return nil
}

type memEmployeeRepo struct {
	items map[id.ID]*employee.Employee
}

func (r *memEmployeeRepo) Create(_ context.Context, e *employee.Employee) error {
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *memEmployeeRepo) GetByID(_ context.Context, employeeID id.ID) (*employee.Employee, error) {
	e, ok := r.items[employeeID]
	if !ok {
		return nil, apperror.NewNotFound("employee", employeeID.String())
	}
	cp := *e
	return &cp, nil
}

func (r *memEmployeeRepo) GetByCode(_ context.Context, code string) (*employee.Employee, error) {
	for _, e := range r.items {
		if e.Code == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("employee", code)
}

func (r *memEmployeeRepo) Update(_ context.Context, e *employee.Employee) error {
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *memEmployeeRepo) Delete(ctx context.Context, employeeID id.ID) error {
	return r.SetDeletionMark(ctx, employeeID, true)
}

func (r *memEmployeeRepo) SetDeletionMark(_ context.Context, employeeID id.ID, marked bool) error {
	e, ok := r.items[employeeID]
	if !ok {
		return apperror.NewNotFound("employee", employeeID.String())
	}
	e.DeletionMark = marked
	return nil
}

func (r *memEmployeeRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*employee.Employee], error) {
	return domain.ListResult[*employee.Employee]{}, nil
}

func (r *memEmployeeRepo) Exists(_ context.Context, employeeID id.ID) (bool, error) {
	_, ok := r.items[employeeID]
	return ok, nil
}

func (r *memEmployeeRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, e := range r.items {
		if e.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEmployeeRepo) GetTree(_ context.Context, _ *id.ID) ([]*employee.Employee, error) {
	return nil, nil
}

func (r *memEmployeeRepo) GetPath(_ context.Context, _ id.ID) ([]*employee.Employee, error) {
	return nil, nil
}

type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqRow struct {
	seq map[string]int64
	key string
}

func (r seqRow) Scan(dest ...any) error {
	p, ok := dest[0].(*int64)
	if !ok {
		return fmt.Errorf("unexpected scan target %T", dest[0])
	}
	r.seq[r.key]++
	*p = r.seq[r.key]
	return nil
}

type seqQuerier struct{ seq map[string]int64 }

func (q seqQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	return seqRow{seq: q.seq, key: args[0].(string)}
}

func newTestService(t *testing.T) (*Service, *memSheetRepo, *memEmployeeRepo) {
	t.Helper()
	sheets := newMemSheetRepo()
	employees := &memEmployeeRepo{items: map[id.ID]*employee.Employee{}}
	svc := NewService(sheets, employees, numerator.New(seqQuerier{seq: map[string]int64{}}), passTx{})
	return svc, sheets, employees
}

func seedEmployee(t *testing.T, repo *memEmployeeRepo, code, name, position, wage string) *employee.Employee {
	t.Helper()
	e := employee.NewEmployee(code, name, position, types.MustMoney(wage))
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func actorCtx(name string) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{Username: name})
}

func weekPeriod() (time.Time, time.Time) {
	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 6)
}

// --- Tests ---

func TestCreateSheet(t *testing.T) {
	svc, _, employees := newTestService(t)
	ctx := actorCtx("rosa")
	start, end := weekPeriod()

	mason := seedEmployee(t, employees, "EMP-001", "Carlos", "mason", "600")
	driver := seedEmployee(t, employees, "EMP-002", "Pedro", "driver", "500")

	sheet, err := svc.Create(ctx, SheetInput{
		PeriodStart: start,
		PeriodEnd:   end,
		Lines: []LineInput{
			{EmployeeID: mason.ID, DaysWorked: types.NewQuantityFromInt(6), Bonuses: types.MustMoney("200")},
			{EmployeeID: driver.ID, DaysWorked: types.NewQuantityFromFloat64(5.5), Deductions: types.MustMoney("150")},
		},
	})
	require.NoError(t, err)

	year := sheet.Date.Format("2006")
	assert.Equal(t, "PLA-"+year+"-00001", sheet.Number)
	assert.Equal(t, SheetDraft, sheet.Status)
	assert.Equal(t, "rosa", sheet.CreatedBy)

	// mason: 6*600+200 = 3800; driver: 5.5*500-150 = 2600 net, 2750 gross
	require.Len(t, sheet.Lines, 2)
	assert.True(t, sheet.Lines[0].Gross.Equal(types.MustMoney("3800")), "gross = %s", sheet.Lines[0].Gross)
	assert.True(t, sheet.Lines[1].Gross.Equal(types.MustMoney("2750")))
	assert.True(t, sheet.Lines[1].Net.Equal(types.MustMoney("2600")))
	assert.True(t, sheet.TotalGross.Equal(types.MustMoney("6550")))
	assert.True(t, sheet.TotalDeductions.Equal(types.MustMoney("150")))
	assert.True(t, sheet.TotalNet.Equal(types.MustMoney("6400")))

	// Snapshots carried from the catalog.
	assert.Equal(t, "Carlos", sheet.Lines[0].EmployeeName)
	assert.Equal(t, "mason", sheet.Lines[0].Position)
}

func TestCreateSheetRejectsDuplicatesAndInactive(t *testing.T) {
	svc, _, employees := newTestService(t)
	ctx := actorCtx("rosa")
	start, end := weekPeriod()

	e := seedEmployee(t, employees, "EMP-001", "Carlos", "mason", "600")

	_, err := svc.Create(ctx, SheetInput{
		PeriodStart: start,
		PeriodEnd:   end,
		Lines: []LineInput{
			{EmployeeID: e.ID, DaysWorked: types.NewQuantityFromInt(6)},
			{EmployeeID: e.ID, DaysWorked: types.NewQuantityFromInt(2)},
		},
	})
	require.Error(t, err, "duplicate employee")

	e.Active = false
	require.NoError(t, employees.Update(ctx, e))
	_, err = svc.Create(ctx, SheetInput{
		PeriodStart: start,
		PeriodEnd:   end,
		Lines:       []LineInput{{EmployeeID: e.ID, DaysWorked: types.NewQuantityFromInt(6)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestCreateSheetRejectsBadPeriod(t *testing.T) {
	svc, _, employees := newTestService(t)
	ctx := actorCtx("rosa")
	start, end := weekPeriod()
	e := seedEmployee(t, employees, "EMP-001", "Carlos", "mason", "600")

	_, err := svc.Create(ctx, SheetInput{
		PeriodStart: end,
		PeriodEnd:   start,
		Lines:       []LineInput{{EmployeeID: e.ID, DaysWorked: types.NewQuantityFromInt(6)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestSheetCloseAndEditGuards(t *testing.T) {
	svc, _, employees := newTestService(t)
	ctx := actorCtx("rosa")
	start, end := weekPeriod()
	e := seedEmployee(t, employees, "EMP-001", "Carlos", "mason", "600")

	sheet, err := svc.Create(ctx, SheetInput{
		PeriodStart: start,
		PeriodEnd:   end,
		Lines:       []LineInput{{EmployeeID: e.ID, DaysWorked: types.NewQuantityFromInt(6)}},
	})
	require.NoError(t, err)

	// Draft lines can be replaced.
	sheet, err = svc.UpdateLines(ctx, sheet.ID, []LineInput{
		{EmployeeID: e.ID, DaysWorked: types.NewQuantityFromInt(4)},
	})
	require.NoError(t, err)
	assert.True(t, sheet.TotalNet.Equal(types.MustMoney("2400")))

	closed, err := svc.Close(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, SheetClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	// Closed sheets are immutable.
	_, err = svc.UpdateLines(ctx, sheet.ID, []LineInput{
		{EmployeeID: e.ID, DaysWorked: types.NewQuantityFromInt(1)},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidStateTransition))

	_, err = svc.Close(ctx, sheet.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidStateTransition))
}

func TestDeductionsCannotExceedGross(t *testing.T) {
	svc, _, employees := newTestService(t)
	ctx := actorCtx("rosa")
	start, end := weekPeriod()
	e := seedEmployee(t, employees, "EMP-001", "Carlos", "mason", "600")

	_, err := svc.Create(ctx, SheetInput{
		PeriodStart: start,
		PeriodEnd:   end,
		Lines: []LineInput{{
			EmployeeID: e.ID,
			DaysWorked: types.NewQuantityFromInt(1),
			Deductions: types.MustMoney("1000"),
		}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
