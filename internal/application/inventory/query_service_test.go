package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warehouse/backend/internal/domain/inventory"
	"github.com/warehouse/backend/internal/domain/shared"
)

// fakeLedgerRepo serves canned records for the read paths under test
type fakeLedgerRepo struct {
	records []inventory.LedgerRecord
	byKey   map[string]*inventory.LedgerRecord
	total   decimal.Decimal
	value   decimal.Decimal
}

func key(warehouseID, goodsID uuid.UUID, batch string) string {
	return warehouseID.String() + "/" + goodsID.String() + "/" + batch
}

func (f *fakeLedgerRepo) FindByID(context.Context, uuid.UUID) (*inventory.LedgerRecord, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeLedgerRepo) FindByKey(_ context.Context, warehouseID, goodsID uuid.UUID, batch string) (*inventory.LedgerRecord, error) {
	if record, ok := f.byKey[key(warehouseID, goodsID, batch)]; ok {
		return record, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeLedgerRepo) FindByKeyForUpdate(ctx context.Context, warehouseID, goodsID uuid.UUID, batch string) (*inventory.LedgerRecord, error) {
	return f.FindByKey(ctx, warehouseID, goodsID, batch)
}

func (f *fakeLedgerRepo) GetOrCreateForUpdate(ctx context.Context, warehouseID, goodsID uuid.UUID, batch string) (*inventory.LedgerRecord, error) {
	return f.FindByKey(ctx, warehouseID, goodsID, batch)
}

func (f *fakeLedgerRepo) FindByWarehouse(context.Context, uuid.UUID, shared.Filter) ([]inventory.LedgerRecord, error) {
	return f.records, nil
}

func (f *fakeLedgerRepo) FindByGoods(context.Context, uuid.UUID, shared.Filter) ([]inventory.LedgerRecord, error) {
	return f.records, nil
}

func (f *fakeLedgerRepo) FindWithStock(context.Context, uuid.UUID, shared.Filter) ([]inventory.LedgerRecord, error) {
	return f.records, nil
}

func (f *fakeLedgerRepo) FindBelowThreshold(context.Context, decimal.Decimal, shared.Filter) ([]inventory.LedgerRecord, error) {
	return f.records, nil
}

func (f *fakeLedgerRepo) FindExpiringWithin(context.Context, time.Duration, shared.Filter) ([]inventory.LedgerRecord, error) {
	return f.records, nil
}

func (f *fakeLedgerRepo) FindExpired(context.Context, shared.Filter) ([]inventory.LedgerRecord, error) {
	return f.records, nil
}

func (f *fakeLedgerRepo) Save(context.Context, *inventory.LedgerRecord) error { return nil }

func (f *fakeLedgerRepo) SaveWithLock(context.Context, *inventory.LedgerRecord) error { return nil }

func (f *fakeLedgerRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeLedgerRepo) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeLedgerRepo) SumQuantityByGoods(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return f.total, nil
}

func (f *fakeLedgerRepo) SumValueByWarehouse(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return f.value, nil
}

// fakeMovementRepo serves canned journal entries
type fakeMovementRepo struct {
	movements []inventory.StockMovement
}

func (f *fakeMovementRepo) Create(context.Context, *inventory.StockMovement) error { return nil }

func (f *fakeMovementRepo) CreateBatch(context.Context, []*inventory.StockMovement) error {
	return nil
}

func (f *fakeMovementRepo) FindByLedgerRecord(context.Context, uuid.UUID, shared.Filter) ([]inventory.StockMovement, error) {
	return f.movements, nil
}

func (f *fakeMovementRepo) FindByDocument(context.Context, uuid.UUID) ([]inventory.StockMovement, error) {
	return f.movements, nil
}

func (f *fakeMovementRepo) FindByWarehouse(context.Context, uuid.UUID, shared.Filter) ([]inventory.StockMovement, error) {
	return f.movements, nil
}

func (f *fakeMovementRepo) FindByDateRange(context.Context, time.Time, time.Time, shared.Filter) ([]inventory.StockMovement, error) {
	return f.movements, nil
}

func (f *fakeMovementRepo) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(f.movements)), nil
}

var (
	_ inventory.LedgerRepository   = (*fakeLedgerRepo)(nil)
	_ inventory.MovementRepository = (*fakeMovementRepo)(nil)
)

func stockedRecord(t *testing.T) *inventory.LedgerRecord {
	t.Helper()
	record, err := inventory.NewLedgerRecord(uuid.New(), uuid.New(), "B-001")
	require.NoError(t, err)
	require.NoError(t, record.Inbound(decimal.NewFromInt(10), decimal.NewFromFloat(2.5)))
	return record
}

func newTestQueryService(ledger *fakeLedgerRepo, movements *fakeMovementRepo) *QueryService {
	return NewQueryService(ledger, movements, zap.NewNop())
}

func TestQueryService_GetStockLine(t *testing.T) {
	record := stockedRecord(t)
	ledger := &fakeLedgerRepo{byKey: map[string]*inventory.LedgerRecord{
		key(record.WarehouseID, record.GoodsID, record.BatchNumber): record,
	}}
	service := newTestQueryService(ledger, &fakeMovementRepo{})

	t.Run("returns the stock line with its derived value", func(t *testing.T) {
		response, err := service.GetStockLine(context.Background(), record.WarehouseID, record.GoodsID, "B-001")

		require.NoError(t, err)
		assert.Equal(t, "10", response.Quantity.String())
		assert.Equal(t, "25", response.StockValue.String())
	})

	t.Run("unknown triple", func(t *testing.T) {
		_, err := service.GetStockLine(context.Background(), uuid.New(), uuid.New(), "")

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestQueryService_Listings(t *testing.T) {
	record := stockedRecord(t)
	ledger := &fakeLedgerRepo{records: []inventory.LedgerRecord{*record}}
	service := newTestQueryService(ledger, &fakeMovementRepo{})

	t.Run("warehouse listing converts records", func(t *testing.T) {
		responses, err := service.ListByWarehouse(context.Background(), record.WarehouseID, shared.DefaultFilter())

		require.NoError(t, err)
		require.Len(t, responses, 1)
		assert.Equal(t, record.GoodsID, responses[0].GoodsID)
	})

	t.Run("low stock rejects a negative threshold", func(t *testing.T) {
		_, err := service.ListLowStock(context.Background(), decimal.NewFromInt(-1), shared.DefaultFilter())

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "INVALID_ARGUMENT"))
	})

	t.Run("near expiry rejects a non-positive window", func(t *testing.T) {
		_, err := service.ListNearExpiry(context.Background(), 0, shared.DefaultFilter())

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "INVALID_ARGUMENT"))
	})
}

func TestQueryService_Aggregates(t *testing.T) {
	ledger := &fakeLedgerRepo{
		total: decimal.NewFromInt(120),
		value: decimal.NewFromFloat(987.65),
	}
	service := newTestQueryService(ledger, &fakeMovementRepo{})

	summary, err := service.GoodsSummary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "120", summary.TotalQuantity.String())

	value, err := service.WarehouseValue(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "987.65", value.TotalValue.String())
}

func TestQueryService_Movements(t *testing.T) {
	record := stockedRecord(t)
	movement, err := inventory.NewStockMovement(record, inventory.MovementInbound,
		decimal.NewFromInt(10), decimal.NewFromFloat(2.5), decimal.Zero)
	require.NoError(t, err)
	service := newTestQueryService(&fakeLedgerRepo{}, &fakeMovementRepo{
		movements: []inventory.StockMovement{*movement},
	})

	t.Run("document journal", func(t *testing.T) {
		responses, err := service.ListMovementsByDocument(context.Background(), uuid.New())

		require.NoError(t, err)
		require.Len(t, responses, 1)
		assert.Equal(t, inventory.MovementInbound, responses[0].MovementType)
	})

	t.Run("date range must be ordered", func(t *testing.T) {
		now := time.Now()

		_, err := service.ListMovementsByDateRange(context.Background(), now, now.Add(-time.Hour), shared.DefaultFilter())

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "INVALID_ARGUMENT"))
	})
}
