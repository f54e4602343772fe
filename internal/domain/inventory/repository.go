package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehouse/backend/internal/domain/shared"
)

// LedgerRepository defines the interface for stock line persistence
type LedgerRepository interface {
	// FindByID finds a ledger record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerRecord, error)

	// FindByKey finds the record for a (warehouse, goods, batch) triple
	FindByKey(ctx context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*LedgerRecord, error)

	// FindByKeyForUpdate finds the record for a triple holding an exclusive
	// row lock. Returns shared.ErrNotFound when no record exists yet.
	FindByKeyForUpdate(ctx context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*LedgerRecord, error)

	// GetOrCreateForUpdate finds the record for a triple holding an exclusive
	// row lock, creating an empty record first when none exists.
	GetOrCreateForUpdate(ctx context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*LedgerRecord, error)

	// FindByWarehouse finds all stock lines in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]LedgerRecord, error)

	// FindByGoods finds stock lines for a goods across warehouses
	FindByGoods(ctx context.Context, goodsID uuid.UUID, filter shared.Filter) ([]LedgerRecord, error)

	// FindWithStock finds stock lines holding any quantity
	FindWithStock(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]LedgerRecord, error)

	// FindBelowThreshold finds stock lines at or below a quantity threshold
	FindBelowThreshold(ctx context.Context, threshold decimal.Decimal, filter shared.Filter) ([]LedgerRecord, error)

	// FindExpiringWithin finds batches whose expiry date falls inside the window
	FindExpiringWithin(ctx context.Context, window time.Duration, filter shared.Filter) ([]LedgerRecord, error)

	// FindExpired finds batches past their expiry date that still hold stock
	FindExpired(ctx context.Context, filter shared.Filter) ([]LedgerRecord, error)

	// Save creates or updates a ledger record
	Save(ctx context.Context, record *LedgerRecord) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, record *LedgerRecord) error

	// Delete removes an empty, unlocked ledger record
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts ledger records matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SumQuantityByGoods sums total quantity for a goods across warehouses
	SumQuantityByGoods(ctx context.Context, goodsID uuid.UUID) (decimal.Decimal, error)

	// SumValueByWarehouse sums stock value at average cost in a warehouse
	SumValueByWarehouse(ctx context.Context, warehouseID uuid.UUID) (decimal.Decimal, error)
}

// MovementRepository defines the interface for the stock movement journal.
// The journal is append-only; there are no update or delete operations.
type MovementRepository interface {
	// Create appends a journal entry
	Create(ctx context.Context, movement *StockMovement) error

	// CreateBatch appends multiple journal entries
	CreateBatch(ctx context.Context, movements []*StockMovement) error

	// FindByLedgerRecord finds entries for a stock line
	FindByLedgerRecord(ctx context.Context, ledgerRecordID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByDocument finds entries caused by a document
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]StockMovement, error)

	// FindByWarehouse finds entries for a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByDateRange finds entries within a date range
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]StockMovement, error)

	// Count counts entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// LedgerFilter extends shared.Filter with stock-line-specific filters
type LedgerFilter struct {
	shared.Filter
	WarehouseID *uuid.UUID
	GoodsID     *uuid.UUID
	BatchNumber *string
	HasStock    bool
	MinQuantity *decimal.Decimal
	MaxQuantity *decimal.Decimal
}
