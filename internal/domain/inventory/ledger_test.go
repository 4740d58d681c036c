package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framasa/internal/core/apperror"
	"framasa/internal/core/audit"
	"framasa/internal/core/id"
	"framasa/internal/core/types"
	"framasa/internal/domain"
)

// --- In-memory fakes ---

type memProductRepo struct {
	items map[id.ID]*Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{items: make(map[id.ID]*Product)}
}

func (r *memProductRepo) Create(_ context.Context, p *Product) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, productID id.ID) (*Product, error) {
	p, ok := r.items[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetByCode(_ context.Context, code string) (*Product, error) {
	for _, p := range r.items {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (r *memProductRepo) Update(_ context.Context, p *Product) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, productID id.ID) error {
	return r.SetDeletionMark(context.Background(), productID, true)
}

func (r *memProductRepo) SetDeletionMark(_ context.Context, productID id.ID, marked bool) error {
	p, ok := r.items[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.DeletionMark = marked
	return nil
}

func (r *memProductRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*Product], error) {
	var items []*Product
	for _, p := range r.items {
		cp := *p
		items = append(items, &cp)
	}
	return domain.ListResult[*Product]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memProductRepo) Exists(_ context.Context, productID id.ID) (bool, error) {
	_, ok := r.items[productID]
	return ok, nil
}

func (r *memProductRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, p := range r.items {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memProductRepo) GetTree(_ context.Context, _ *id.ID) ([]*Product, error) {
	return nil, nil
}

func (r *memProductRepo) GetPath(_ context.Context, _ id.ID) ([]*Product, error) {
	return nil, nil
}

func (r *memProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*Product, error) {
	return r.GetByID(ctx, productID)
}

func (r *memProductRepo) UpdateStock(_ context.Context, productID id.ID, stock types.Quantity) error {
	p, ok := r.items[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.Stock = stock
	return nil
}

func (r *memProductRepo) ListLowStock(_ context.Context) ([]*Product, error) {
	var out []*Product
	for _, p := range r.items {
		if p.Active && p.LowStock() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProductRepo) snapshot() map[id.ID]Product {
	snap := make(map[id.ID]Product, len(r.items))
	for k, v := range r.items {
		snap[k] = *v
	}
	return snap
}

func (r *memProductRepo) restore(snap map[id.ID]Product) {
	r.items = make(map[id.ID]*Product, len(snap))
	for k, v := range snap {
		cp := v
		r.items[k] = &cp
	}
}

type memMovementRepo struct {
	rows []*Movement
}

func (r *memMovementRepo) Create(_ context.Context, m *Movement) error {
	cp := *m
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, movementID id.ID) (*Movement, error) {
	for _, m := range r.rows {
		if m.ID == movementID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("movement", movementID.String())
}

func (r *memMovementRepo) List(_ context.Context, f MovementFilter) ([]*Movement, int64, error) {
	var out []*Movement
	for _, m := range r.rows {
		if f.ProductID != nil && m.ProductID != *f.ProductID {
			continue
		}
		if f.Kind != nil && m.Kind != *f.Kind {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

// memTxManager rolls back in-memory state on error so atomicity tests
// mean something.
type memTxManager struct {
	products  map[Domain]*memProductRepo
	movements *memMovementRepo
}

func (t *memTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snaps := make(map[Domain]map[id.ID]Product)
	for d, repo := range t.products {
		snaps[d] = repo.snapshot()
	}
	movLen := len(t.movements.rows)

	if err := fn(ctx); err != nil {
		for d, repo := range t.products {
			repo.restore(snaps[d])
		}
		t.movements.rows = t.movements.rows[:movLen]
		return err
	}
	return nil
}

func newTestLedger(t *testing.T) (*Ledger, map[Domain]*memProductRepo, *memMovementRepo) {
	t.Helper()

	repos := map[Domain]*memProductRepo{
		DomainHardware:   newMemProductRepo(),
		DomainBlocks:     newMemProductRepo(),
		DomainAggregates: newMemProductRepo(),
	}
	movements := &memMovementRepo{}
	txm := &memTxManager{products: repos, movements: movements}

	products := map[Domain]ProductRepository{}
	for d, r := range repos {
		products[d] = r
	}

	ledger, err := NewLedger(products, movements, txm)
	require.NoError(t, err)
	return ledger, repos, movements
}

func seedProduct(t *testing.T, repos map[Domain]*memProductRepo, d Domain, code string, stock types.Quantity) *Product {
	t.Helper()
	p := NewProduct(d, code, "Test "+code)
	p.Stock = stock
	require.NoError(t, repos[d].Create(context.Background(), p))
	return p
}

type memAuditEntry struct {
	entityType string
	entityID   id.ID
	action     audit.Action
	changes    map[string]any
}

type memAuditTrail struct {
	entries []memAuditEntry
}

func (a *memAuditTrail) LogChange(_ context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) error {
	a.entries = append(a.entries, memAuditEntry{entityType, entityID, action, changes})
	return nil
}

// --- Tests ---

func TestRecordMovement_EntryIncreasesStock(t *testing.T) {
	ledger, repos, movements := newTestLedger(t)
	ctx := context.Background()
	p := seedProduct(t, repos, DomainHardware, "MART-001", types.NewQuantityFromInt(10))

	m, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementEntry,
		Quantity: types.NewQuantityFromInt(5),
		Reason:   "supplier delivery",
		Actor:    "ana",
	})
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromInt(10), m.StockBefore)
	assert.Equal(t, types.NewQuantityFromInt(15), m.StockAfter)
	assert.Equal(t, "MART-001", m.ProductCode)
	assert.Equal(t, "ana", m.Actor)
	assert.WithinDuration(t, time.Now(), m.CreatedAt, time.Minute)

	stored, err := repos[DomainHardware].GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(15), stored.Stock)
	assert.Len(t, movements.rows, 1)
}

func TestRecordMovement_ExitRequiresStock(t *testing.T) {
	ledger, repos, movements := newTestLedger(t)
	ctx := context.Background()
	p := seedProduct(t, repos, DomainBlocks, "BLQ-015", types.NewQuantityFromInt(3))

	_, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementExit,
		Quantity: types.NewQuantityFromInt(4),
		Actor:    "ana",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// Nothing changed and nothing was logged.
	stored, _ := repos[DomainBlocks].GetByID(ctx, p.ID)
	assert.Equal(t, types.NewQuantityFromInt(3), stored.Stock)
	assert.Empty(t, movements.rows)

	// Exact stock is allowed.
	m, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementExit,
		Quantity: types.NewQuantityFromInt(3),
		Actor:    "ana",
	})
	require.NoError(t, err)
	assert.True(t, m.StockAfter.IsZero())
}

func TestRecordMovement_TransferBehavesLikeExit(t *testing.T) {
	ledger, repos, _ := newTestLedger(t)
	ctx := context.Background()
	p := seedProduct(t, repos, DomainHardware, "CLAV-002", types.NewQuantityFromInt(8))

	m, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementTransfer,
		Quantity: types.NewQuantityFromInt(2),
		Actor:    "luis",
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(6), m.StockAfter)
}

func TestRecordMovement_ReturnIncreasesStock(t *testing.T) {
	ledger, repos, _ := newTestLedger(t)
	ctx := context.Background()
	p := seedProduct(t, repos, DomainHardware, "TUBO-010", types.NewQuantityFromInt(1))

	m, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementReturn,
		Quantity: types.NewQuantityFromInt(2),
		Reason:   "customer return",
		Actor:    "luis",
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(3), m.StockAfter)
}

func TestRecordMovement_WholeUnitsEnforced(t *testing.T) {
	ledger, repos, _ := newTestLedger(t)
	ctx := context.Background()

	hw := seedProduct(t, repos, DomainHardware, "MART-001", types.NewQuantityFromInt(10))
	_, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      hw.Ref(),
		Kind:     MovementExit,
		Quantity: types.NewQuantityFromFloat64(1.5),
		Actor:    "ana",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))

	blk := seedProduct(t, repos, DomainBlocks, "BLQ-015", types.NewQuantityFromInt(10))
	_, err = ledger.RecordMovement(ctx, MovementRequest{
		Ref:      blk.Ref(),
		Kind:     MovementEntry,
		Quantity: types.NewQuantityFromFloat64(0.25),
		Actor:    "ana",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))

	// Aggregates move in fractional cubic meters.
	agg := seedProduct(t, repos, DomainAggregates, "AREN-001", types.NewQuantityFromFloat64(12.5))
	m, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      agg.Ref(),
		Kind:     MovementExit,
		Quantity: types.NewQuantityFromFloat64(2.75),
		Actor:    "ana",
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(9.75), m.StockAfter)
}

func TestRecordMovement_AdjustmentSignedAndFloored(t *testing.T) {
	ledger, repos, _ := newTestLedger(t)
	ctx := context.Background()
	p := seedProduct(t, repos, DomainHardware, "MART-001", types.NewQuantityFromInt(5))

	// Positive adjustment.
	m, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementAdjustment,
		Quantity: types.NewQuantityFromInt(3),
		Reason:   "count correction",
		Actor:    "ana",
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(8), m.StockAfter)

	// Negative adjustment larger than stock floors at zero but keeps the
	// requested delta and truthful snapshots.
	m, err = ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementAdjustment,
		Quantity: types.NewQuantityFromInt(-20),
		Reason:   "shrinkage",
		Actor:    "ana",
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(-20), m.Quantity)
	assert.Equal(t, types.NewQuantityFromInt(8), m.StockBefore)
	assert.True(t, m.StockAfter.IsZero())
	assert.Equal(t, types.NewQuantityFromInt(-8), m.AppliedDelta())
}

func TestRecordMovement_RejectsBadQuantities(t *testing.T) {
	ledger, repos, _ := newTestLedger(t)
	ctx := context.Background()
	p := seedProduct(t, repos, DomainHardware, "MART-001", types.NewQuantityFromInt(5))

	cases := []struct {
		name string
		kind MovementKind
		qty  types.Quantity
	}{
		{"zero entry", MovementEntry, 0},
		{"zero exit", MovementExit, 0},
		{"zero adjustment", MovementAdjustment, 0},
		{"negative entry", MovementEntry, types.NewQuantityFromInt(-1)},
		{"negative exit", MovementExit, types.NewQuantityFromInt(-2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.RecordMovement(ctx, MovementRequest{
				Ref:      p.Ref(),
				Kind:     tc.kind,
				Quantity: tc.qty,
				Actor:    "ana",
			})
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
		})
	}
}

func TestRecordMovement_InactiveProduct(t *testing.T) {
	ledger, repos, _ := newTestLedger(t)
	ctx := context.Background()
	p := NewProduct(DomainHardware, "OLD-001", "Discontinued")
	p.Active = false
	require.NoError(t, repos[DomainHardware].Create(ctx, p))

	_, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementEntry,
		Quantity: types.NewQuantityFromInt(1),
		Actor:    "ana",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestRecordMovement_UnknownProduct(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.RecordMovement(context.Background(), MovementRequest{
		Ref:      ProductRef{Domain: DomainHardware, ID: id.New()},
		Kind:     MovementEntry,
		Quantity: types.NewQuantityFromInt(1),
		Actor:    "ana",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordMovements_AllOrNothing(t *testing.T) {
	ledger, repos, movements := newTestLedger(t)
	ctx := context.Background()
	a := seedProduct(t, repos, DomainHardware, "MART-001", types.NewQuantityFromInt(10))
	b := seedProduct(t, repos, DomainHardware, "CLAV-002", types.NewQuantityFromInt(1))

	_, err := ledger.RecordMovements(ctx, []MovementRequest{
		{Ref: a.Ref(), Kind: MovementExit, Quantity: types.NewQuantityFromInt(5), Actor: "ana"},
		{Ref: b.Ref(), Kind: MovementExit, Quantity: types.NewQuantityFromInt(2), Actor: "ana"},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// First exit must have been rolled back.
	storedA, _ := repos[DomainHardware].GetByID(ctx, a.ID)
	assert.Equal(t, types.NewQuantityFromInt(10), storedA.Stock)
	assert.Empty(t, movements.rows)

	// A valid batch lands completely.
	got, err := ledger.RecordMovements(ctx, []MovementRequest{
		{Ref: a.Ref(), Kind: MovementExit, Quantity: types.NewQuantityFromInt(5), Actor: "ana"},
		{Ref: b.Ref(), Kind: MovementExit, Quantity: types.NewQuantityFromInt(1), Actor: "ana"},
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, movements.rows, 2)
}

func TestRecordMovement_WritesAuditTrail(t *testing.T) {
	ledger, repos, _ := newTestLedger(t)
	trail := &memAuditTrail{}
	ledger.SetAudit(trail)
	ctx := context.Background()
	p := seedProduct(t, repos, DomainHardware, "MART-001", types.NewQuantityFromInt(10))

	m, err := ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementEntry,
		Quantity: types.NewQuantityFromInt(5),
		Reason:   "supplier delivery",
		Actor:    "ana",
	})
	require.NoError(t, err)

	require.Len(t, trail.entries, 1)
	e := trail.entries[0]
	assert.Equal(t, "movement", e.entityType)
	assert.Equal(t, m.ID, e.entityID)
	assert.Equal(t, audit.ActionMovement, e.action)
	assert.Equal(t, "ENTRADA", e.changes["kind"])
	assert.Equal(t, "MART-001", e.changes["product_code"])
	assert.Equal(t, types.NewQuantityFromInt(15).String(), e.changes["stock_after"])

	// A rejected movement leaves no trace.
	_, err = ledger.RecordMovement(ctx, MovementRequest{
		Ref:      p.Ref(),
		Kind:     MovementExit,
		Quantity: types.NewQuantityFromInt(100),
		Actor:    "ana",
	})
	require.Error(t, err)
	assert.Len(t, trail.entries, 1)
}

func TestLowStock(t *testing.T) {
	ledger, repos, _ := newTestLedger(t)
	ctx := context.Background()

	low := seedProduct(t, repos, DomainHardware, "MART-001", types.NewQuantityFromInt(2))
	low.MinStock = types.NewQuantityFromInt(5)
	require.NoError(t, repos[DomainHardware].Update(ctx, low))

	ok := seedProduct(t, repos, DomainHardware, "CLAV-002", types.NewQuantityFromInt(50))
	ok.MinStock = types.NewQuantityFromInt(5)
	require.NoError(t, repos[DomainHardware].Update(ctx, ok))

	items, err := ledger.LowStock(ctx, DomainHardware)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "MART-001", items[0].Code)
}
