package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warehouse/backend/internal/domain/inventory"
	"github.com/warehouse/backend/internal/domain/shared"
)

// GormLedgerRepository implements LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID finds a ledger record by its ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.LedgerRecord, error) {
	var record inventory.LedgerRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByKey finds the record for a (warehouse, goods, batch) triple
func (r *GormLedgerRepository) FindByKey(ctx context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*inventory.LedgerRecord, error) {
	var record inventory.LedgerRecord
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND goods_id = ? AND batch_number = ?", warehouseID, goodsID, batchNumber).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByKeyForUpdate finds the record for a triple holding an exclusive row
// lock. The lock serializes the read-then-write of the quantity fields
// against concurrent executions touching the same stock line.
func (r *GormLedgerRepository) FindByKeyForUpdate(ctx context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*inventory.LedgerRecord, error) {
	var record inventory.LedgerRecord
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND goods_id = ? AND batch_number = ?", warehouseID, goodsID, batchNumber).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// GetOrCreateForUpdate finds the record for a triple holding an exclusive
// row lock, creating an empty record first when none exists. The insert uses
// ON CONFLICT DO NOTHING so two concurrent first inbounds race safely.
func (r *GormLedgerRepository) GetOrCreateForUpdate(ctx context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*inventory.LedgerRecord, error) {
	record, err := r.FindByKeyForUpdate(ctx, warehouseID, goodsID, batchNumber)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	record, err = inventory.NewLedgerRecord(warehouseID, goodsID, batchNumber)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "warehouse_id"}, {Name: "goods_id"}, {Name: "batch_number"}},
			DoNothing: true,
		}).
		Create(record).Error; err != nil {
		return nil, err
	}

	return r.FindByKeyForUpdate(ctx, warehouseID, goodsID, batchNumber)
}

// FindByWarehouse finds all stock lines in a warehouse
func (r *GormLedgerRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.LedgerRecord, error) {
	var records []inventory.LedgerRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerRecord{}).
			Where("warehouse_id = ?", warehouseID),
		filter,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByGoods finds stock lines for a goods across warehouses
func (r *GormLedgerRepository) FindByGoods(ctx context.Context, goodsID uuid.UUID, filter shared.Filter) ([]inventory.LedgerRecord, error) {
	var records []inventory.LedgerRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerRecord{}).
			Where("goods_id = ?", goodsID),
		filter,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindWithStock finds stock lines holding any quantity
func (r *GormLedgerRepository) FindWithStock(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.LedgerRecord, error) {
	var records []inventory.LedgerRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerRecord{}).
			Where("warehouse_id = ? AND quantity > 0", warehouseID),
		filter,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindBelowThreshold finds stock lines at or below a quantity threshold
func (r *GormLedgerRepository) FindBelowThreshold(ctx context.Context, threshold decimal.Decimal, filter shared.Filter) ([]inventory.LedgerRecord, error) {
	var records []inventory.LedgerRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerRecord{}).
			Where("quantity <= ?", threshold),
		filter,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindExpiringWithin finds batches whose expiry date falls inside the window
func (r *GormLedgerRepository) FindExpiringWithin(ctx context.Context, window time.Duration, filter shared.Filter) ([]inventory.LedgerRecord, error) {
	now := time.Now()
	var records []inventory.LedgerRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerRecord{}).
			Where("expiry_date IS NOT NULL AND expiry_date > ? AND expiry_date <= ? AND quantity > 0", now, now.Add(window)),
		filter,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindExpired finds batches past their expiry date that still hold stock
func (r *GormLedgerRepository) FindExpired(ctx context.Context, filter shared.Filter) ([]inventory.LedgerRecord, error) {
	var records []inventory.LedgerRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerRecord{}).
			Where("expiry_date IS NOT NULL AND expiry_date < ? AND quantity > 0", time.Now()),
		filter,
	)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a ledger record
func (r *GormLedgerRepository) Save(ctx context.Context, record *inventory.LedgerRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormLedgerRepository) SaveWithLock(ctx context.Context, record *inventory.LedgerRecord) error {
	record.IncrementVersion()
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"quantity":           record.Quantity,
			"available_quantity": record.AvailableQuantity,
			"locked_quantity":    record.LockedQuantity,
			"average_cost":       record.AverageCost,
			"latest_cost":        record.LatestCost,
			"production_date":    record.ProductionDate,
			"expiry_date":        record.ExpiryDate,
			"last_inbound_date":  record.LastInboundDate,
			"last_outbound_date": record.LastOutboundDate,
			"version":            record.Version,
			"updated_at":         record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Stock line was modified by another transaction")
	}
	return nil
}

// Delete removes an empty, unlocked ledger record
func (r *GormLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND quantity = 0 AND locked_quantity = 0", id).
		Delete(&inventory.LedgerRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts ledger records matching the filter
func (r *GormLedgerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.LedgerRecord{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityByGoods sums total quantity for a goods across warehouses
func (r *GormLedgerRepository) SumQuantityByGoods(ctx context.Context, goodsID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.LedgerRecord{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("goods_id = ?", goodsID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumValueByWarehouse sums stock value at average cost in a warehouse
func (r *GormLedgerRepository) SumValueByWarehouse(ctx context.Context, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.LedgerRecord{}).
		Select("COALESCE(SUM(quantity * average_cost), 0) as total").
		Where("warehouse_id = ?", warehouseID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
