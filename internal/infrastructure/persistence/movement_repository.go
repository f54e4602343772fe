package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warehouse/backend/internal/domain/inventory"
	"github.com/warehouse/backend/internal/domain/shared"
)

// GormMovementRepository implements MovementRepository using GORM.
// The journal is append-only, so the repository only inserts and reads.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends a journal entry
func (r *GormMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// CreateBatch appends multiple journal entries
func (r *GormMovementRepository) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// FindByLedgerRecord finds entries for a stock line
func (r *GormMovementRepository) FindByLedgerRecord(ctx context.Context, ledgerRecordID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("ledger_record_id = ?", ledgerRecordID),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByDocument finds entries caused by a document
func (r *GormMovementRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at asc").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByWarehouse finds entries for a warehouse
func (r *GormMovementRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("warehouse_id = ?", warehouseID),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByDateRange finds entries within a date range
func (r *GormMovementRepository) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("created_at >= ? AND created_at <= ?", start, end),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Count counts entries matching the filter
func (r *GormMovementRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.StockMovement{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
